package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/auth"
	"github.com/campuspub/publication-portal/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, submitterID string, dto CreateRequestDTO, attachments []*Attachment) (*PublicationRequest, error)
	List(ctx context.Context, filters ListFilters) ([]*PublicationRequest, int64, error)
	ChangeStatus(ctx context.Context, dto UpdateStatusDTO) (*PublicationRequest, error)
	Update(ctx context.Context, dto UpdateRequestDTO) (*PublicationRequest, error)
	Delete(ctx context.Context, dto DeleteRequestDTO) error
	Attachment(ctx context.Context, id string) (*Attachment, error)
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

// Create accepts a submission from the public form. Authentication is not
// required; a signed-in submitter is recorded when present.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	dto, files, err := ParseCreateRequest(r)
	if err != nil {
		h.Logger.Error("Create: invalid payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	attachments, err := readAttachments(files)
	if err != nil {
		h.Logger.Error("Create: failed to read attachments", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	submitterID := ""
	if u, ok := auth.UserFromContext(r.Context()); ok && u != nil {
		submitterID = u.ID
	}

	req, err := h.Service.Create(r.Context(), submitterID, dto, attachments)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.writeRecord(w, http.StatusCreated, req)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	items, total, err := h.Service.List(r.Context(), ListFilters{
		Department: q.Get("dept"),
		Status:     q.Get("status"),
		Query:      q.Get("q"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":       items,
		"total_count": total,
	})
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.ChangeStatus(r.Context(), dto)
	if err != nil {
		if errors.Is(err, internal.ErrRequestNotFound) {
			h.WriteBusinessRule(w, "not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.writeRecord(w, http.StatusOK, req)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Update(r.Context(), dto)
	if err != nil {
		if errors.Is(err, internal.ErrRequestNotFound) {
			h.WriteBusinessRule(w, "not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.writeRecord(w, http.StatusOK, req)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var dto DeleteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Delete(r.Context(), dto); err != nil {
		if errors.Is(err, internal.ErrRequestNotFound) {
			h.WriteBusinessRule(w, "not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	attachment, err := h.Service.Attachment(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	mimeType := attachment.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(attachment.Content); err != nil {
		h.Logger.Error("DownloadAttachment: write failed", "error", err, "attachment_id", id)
	}
}

// writeRecord flattens the record into the response body alongside the
// success flag.
func (h *Handler) writeRecord(w http.ResponseWriter, status int, req *PublicationRequest) {
	raw, err := json.Marshal(req)
	if err != nil {
		h.Logger.Error("failed to marshal request record", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	body := map[string]interface{}{}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	body["success"] = true
	h.WriteJSON(w, status, body)
}

func readAttachments(files []*multipart.FileHeader) ([]*Attachment, error) {
	attachments := make([]*Attachment, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open attachment %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", fh.Filename, err)
		}
		attachments = append(attachments, &Attachment{
			Filename:  fh.Filename,
			MimeType:  fh.Header.Get("Content-Type"),
			SizeBytes: int64(len(content)),
			Content:   content,
		})
	}
	return attachments, nil
}
