package event

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/transport"
)

type ServiceAPI interface {
	CreateFromRequest(ctx context.Context, requestID string) (*Event, error)
	DeleteBySource(ctx context.Context, requestID string) error
	Range(ctx context.Context, startDate, endDate string) ([]*Event, error)
	List(ctx context.Context) ([]*Event, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

type sourceRequestDTO struct {
	RequestID string `json:"request_id"`
	// legacy clients send the id field instead
	ID string `json:"id"`
}

func (dto sourceRequestDTO) requestID() string {
	if dto.RequestID != "" {
		return dto.RequestID
	}
	return dto.ID
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto sourceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.requestID() == "" {
		h.WriteError(w, http.StatusBadRequest, "request_id is required")
		return
	}

	e, err := h.Service.CreateFromRequest(r.Context(), dto.requestID())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"event":   e,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var dto sourceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.requestID() == "" {
		h.WriteError(w, http.StatusBadRequest, "request_id is required")
		return
	}

	if err := h.Service.DeleteBySource(r.Context(), dto.requestID()); err != nil {
		if errors.Is(err, internal.ErrEventNotFound) {
			h.WriteBusinessRule(w, "not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start")
	end := q.Get("end")
	if start == "" || end == "" {
		h.WriteError(w, http.StatusBadRequest, "start and end dates are required")
		return
	}

	items, err := h.Service.Range(r.Context(), start, end)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
