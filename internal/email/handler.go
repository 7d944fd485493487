package email

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/campuspub/publication-portal/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

type sendDTO struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

func (dto sendDTO) Validate() error {
	if len(dto.To) == 0 {
		return errors.New("at least one recipient is required")
	}
	if strings.TrimSpace(dto.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(dto.Body) == "" {
		return errors.New("body is required")
	}
	return nil
}

// Send is the admin broadcast endpoint.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var dto sendDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	to := make([]mail.Address, 0, len(dto.To))
	for _, raw := range dto.To {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid recipient address: "+raw)
			return
		}
		to = append(to, *addr)
	}

	h.Service.SendMessages(&Message{
		To:       to,
		Subject:  dto.Subject,
		TextBody: dto.Body,
	})

	h.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"queued":  len(to),
	})
}
