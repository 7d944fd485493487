package request

import (
	"context"
	"log/slog"
	"time"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/core/events"
	"github.com/campuspub/publication-portal/internal/core/localtime"
)

// Repository defines the data access methods for publication requests
type Repository interface {
	Create(ctx context.Context, req *PublicationRequest, attachments []*Attachment) error
	GetByID(ctx context.Context, id string) (*PublicationRequest, error)
	List(ctx context.Context, filters ListFilters) ([]*PublicationRequest, int64, error)
	Update(ctx context.Context, req *PublicationRequest) error
	Delete(ctx context.Context, id string) error
	GetAttachment(ctx context.Context, id string) (*Attachment, error)
	AttachmentMeta(ctx context.Context, requestIDs []string) (map[string][]AttachmentMeta, error)
	SweepOrphanAttachments(ctx context.Context) (int64, error)
}

// Service handles the moderation workflow for publication requests
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Create submits a new request in pending status. Start and end instants are
// derived from the local date and wall-clock fields.
func (s *Service) Create(ctx context.Context, submitterID string, dto CreateRequestDTO, attachments []*Attachment) (*PublicationRequest, error) {
	if err := dto.Validate(); err != nil {
		if dto.PublishAll && len(dto.Departments) > 0 {
			return nil, internal.NewValidationError(err.Error(), internal.ErrCodeDepartmentsClash)
		}
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	startAt, endAt, err := resolveInstants(dto)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req := &PublicationRequest{
		Title:        dto.Title,
		Author:       dto.Author,
		Organization: dto.Organization,
		Email:        dto.Email,
		Location:     dto.Location,
		OnCampus:     dto.OnCampus,
		MaxAttendees: dto.MaxAttendees,
		Date:         dto.Date,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		Description:  dto.Description,
		Departments:  dto.Departments,
		PublishAll:   dto.PublishAll,
		Status:       StatusPending,
		IsVisible:    false,
		SubmitterID:  submitterID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Departments == nil {
		req.Departments = []string{}
	}
	if !startAt.IsZero() {
		req.StartISO = startAt.Format(time.RFC3339)
	}
	if !endAt.IsZero() {
		req.EndISO = endAt.Format(time.RFC3339)
	}

	if err := s.repo.Create(ctx, req, attachments); err != nil {
		s.logger.Error("failed to create publication request", "error", err)
		return nil, err
	}

	s.bus.PublishAsync(events.NewRequestEvent(events.RequestSubmitted, req.ID, req.Title, req.Email, ""))
	s.logger.Info("publication request submitted", "request_id", req.ID, "title", req.Title)
	if err := s.attachMeta(ctx, []*PublicationRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// List returns a filtered page plus the total match count, with attachment
// metadata stitched in.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]*PublicationRequest, int64, error) {
	filters = filters.Normalize()
	if filters.Status != "" && !ValidStatus(filters.Status) {
		return nil, 0, internal.NewValidationError("unknown status filter", internal.ErrCodeInvalidStatus)
	}

	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		s.logger.Error("failed to list publication requests", "error", err)
		return nil, 0, err
	}

	if err := s.attachMeta(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns one request with attachment metadata.
func (s *Service) Get(ctx context.Context, id string) (*PublicationRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachMeta(ctx, []*PublicationRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// ChangeStatus runs a moderation transition. Visibility tracks the approved
// status; approve and reject raise notification events.
func (s *Service) ChangeStatus(ctx context.Context, dto UpdateStatusDTO) (*PublicationRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidStatus)
	}

	req, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	status := NormalizeStatus(dto.Status)
	switch status {
	case StatusApproved:
		req.Approve(dto.Feedback)
	case StatusRejected:
		req.Reject(dto.Feedback)
	case StatusPending:
		req.Reopen(dto.Feedback)
	}

	if err := s.repo.Update(ctx, req); err != nil {
		s.logger.Error("failed to update request status", "error", err, "request_id", req.ID)
		return nil, err
	}

	switch status {
	case StatusApproved:
		s.bus.PublishAsync(events.NewRequestEvent(events.RequestApproved, req.ID, req.Title, req.Email, dto.Feedback))
	case StatusRejected:
		s.bus.PublishAsync(events.NewRequestEvent(events.RequestRejected, req.ID, req.Title, req.Email, dto.Feedback))
	}

	s.logger.Info("request status changed", "request_id", req.ID, "status", status)
	if err := s.attachMeta(ctx, []*PublicationRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// Update applies a staff edit. Status and visibility are untouched; the
// caller re-syncs from the returned record.
func (s *Service) Update(ctx context.Context, dto UpdateRequestDTO) (*PublicationRequest, error) {
	if err := dto.Validate(); err != nil {
		if dto.PublishAll && len(dto.Departments) > 0 {
			return nil, internal.NewValidationError(err.Error(), internal.ErrCodeDepartmentsClash)
		}
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	req, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	startAt, endAt, err := resolveInstants(dto.CreateRequestDTO)
	if err != nil {
		return nil, err
	}

	req.Title = dto.Title
	req.Author = dto.Author
	req.Organization = dto.Organization
	req.Email = dto.Email
	req.Location = dto.Location
	req.OnCampus = dto.OnCampus
	req.MaxAttendees = dto.MaxAttendees
	req.Date = dto.Date
	req.StartTime = dto.StartTime
	req.EndTime = dto.EndTime
	req.Description = dto.Description
	req.Departments = dto.Departments
	if req.Departments == nil {
		req.Departments = []string{}
	}
	req.PublishAll = dto.PublishAll
	req.StartISO = ""
	req.EndISO = ""
	if !startAt.IsZero() {
		req.StartISO = startAt.Format(time.RFC3339)
	}
	if !endAt.IsZero() {
		req.EndISO = endAt.Format(time.RFC3339)
	}
	req.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, req); err != nil {
		s.logger.Error("failed to update request", "error", err, "request_id", req.ID)
		return nil, err
	}

	s.logger.Info("request updated", "request_id", req.ID)
	if err := s.attachMeta(ctx, []*PublicationRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// Delete removes the request and its attachments, then announces the removal
// so derived calendar events can be cleaned up.
func (s *Service) Delete(ctx context.Context, dto DeleteRequestDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	req, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, req.ID); err != nil {
		s.logger.Error("failed to delete request", "error", err, "request_id", req.ID)
		return err
	}

	s.bus.PublishAsync(events.NewRequestEvent(events.RequestDeleted, req.ID, req.Title, req.Email, ""))
	s.logger.Info("request deleted", "request_id", req.ID)
	return nil
}

// Attachment loads a stored blob for download.
func (s *Service) Attachment(ctx context.Context, id string) (*Attachment, error) {
	return s.repo.GetAttachment(ctx, id)
}

// SweepOrphanAttachments deletes blobs whose parent request no longer exists.
func (s *Service) SweepOrphanAttachments(ctx context.Context) (int64, error) {
	removed, err := s.repo.SweepOrphanAttachments(ctx)
	if err != nil {
		s.logger.Error("orphan attachment sweep failed", "error", err)
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("orphan attachments removed", "count", removed)
	}
	return removed, nil
}

func (s *Service) attachMeta(ctx context.Context, items []*PublicationRequest) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	meta, err := s.repo.AttachmentMeta(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load attachment metadata", "error", err)
		return err
	}
	for _, item := range items {
		if m, ok := meta[item.ID]; ok {
			item.Attachments = m
		} else {
			item.Attachments = []AttachmentMeta{}
		}
	}
	return nil
}

func resolveInstants(dto CreateRequestDTO) (time.Time, time.Time, error) {
	startAt, err := localtime.CombineUTC(dto.Date, dto.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate)
	}
	var endAt time.Time
	if dto.EndTime != "" {
		endAt, err = localtime.CombineUTC(dto.Date, dto.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidTime)
		}
	}
	if !startAt.IsZero() && !endAt.IsZero() && endAt.Before(startAt) {
		return time.Time{}, time.Time{}, internal.NewValidationError("end time is before start time", internal.ErrCodeEndBeforeStart)
	}
	return startAt, endAt, nil
}
