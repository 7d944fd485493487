package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/cache"
	"github.com/campuspub/publication-portal/internal/core/events"
	"github.com/campuspub/publication-portal/internal/core/localtime"
	"github.com/campuspub/publication-portal/internal/request"
)

// Repository defines the data access methods for calendar events
type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetBySourceRequest(ctx context.Context, requestID string) (*Event, error)
	DeleteBySourceRequest(ctx context.Context, requestID string) error
	Range(ctx context.Context, from, to time.Time) ([]*Event, error)
	List(ctx context.Context) ([]*Event, error)
}

// RequestSource loads the moderated request an event is derived from.
type RequestSource interface {
	Get(ctx context.Context, id string) (*request.PublicationRequest, error)
}

const calendarCachePrefix = "calendar:"

// Service projects approved publication requests onto the public calendar
type Service struct {
	repo     Repository
	requests RequestSource
	cache    cache.Cacher
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo Repository, requests RequestSource, c cache.Cacher, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		repo:     repo,
		requests: requests,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// SubscribeBus removes the derived event when its source request is deleted.
func (s *Service) SubscribeBus(bus *events.EventBus) {
	bus.Subscribe(events.RequestDeleted, func(ctx context.Context, e events.Event) error {
		re, ok := e.(events.RequestEvent)
		if !ok {
			return nil
		}
		if err := s.DeleteBySource(ctx, re.RequestID); err != nil {
			if errors.Is(err, internal.ErrEventNotFound) {
				return nil
			}
			return err
		}
		return nil
	})
}

// CreateFromRequest publishes the calendar event for an approved request.
// Publishing twice returns the existing event; an unapproved source is a
// conflict.
func (s *Service) CreateFromRequest(ctx context.Context, requestID string) (*Event, error) {
	if existing, err := s.repo.GetBySourceRequest(ctx, requestID); err == nil {
		return existing, nil
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != request.StatusApproved || !req.IsVisible {
		return nil, internal.ErrRequestNotApproved
	}

	e := &Event{
		SourceRequestID: req.ID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		PublishAll:      req.PublishAll,
		Departments:     req.Departments,
		CreatedAt:       time.Now().UTC(),
	}
	if req.StartISO != "" {
		if t, err := time.Parse(time.RFC3339, req.StartISO); err == nil {
			e.StartAt = &t
		}
	}
	if req.EndISO != "" {
		if t, err := time.Parse(time.RFC3339, req.EndISO); err == nil {
			e.EndAt = &t
		}
	}

	if err := s.repo.Create(ctx, e); err != nil {
		// concurrent create resolves to the stored event
		if existing, lookupErr := s.repo.GetBySourceRequest(ctx, requestID); lookupErr == nil {
			return existing, nil
		}
		s.logger.Error("failed to create event", "error", err, "request_id", requestID)
		return nil, err
	}

	s.cache.DeletePrefix(ctx, calendarCachePrefix)
	s.logger.Info("event published", "event_id", e.ID, "request_id", requestID)
	return e, nil
}

// DeleteBySource unpublishes the event derived from the given request.
func (s *Service) DeleteBySource(ctx context.Context, requestID string) error {
	if err := s.repo.DeleteBySourceRequest(ctx, requestID); err != nil {
		return err
	}
	s.cache.DeletePrefix(ctx, calendarCachePrefix)
	s.logger.Info("event unpublished", "request_id", requestID)
	return nil
}

// Range returns published events overlapping the half-open local date range
// [start, end+1d). Results are cached per range.
func (s *Service) Range(ctx context.Context, startDate, endDate string) ([]*Event, error) {
	from, err := localtime.DayStartUTC(startDate)
	if err != nil {
		return nil, internal.NewValidationError("invalid start date", internal.ErrCodeInvalidDate)
	}
	endStart, err := localtime.DayStartUTC(endDate)
	if err != nil {
		return nil, internal.NewValidationError("invalid end date", internal.ErrCodeInvalidDate)
	}
	to := endStart.Add(24 * time.Hour)
	if to.Before(from) {
		return nil, internal.NewValidationError("end date is before start date", internal.ErrCodeEndBeforeStart)
	}

	cacheKey := calendarCachePrefix + startDate + ":" + endDate
	if raw, ok := s.cache.Get(ctx, cacheKey); ok {
		var cached []*Event
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.cache.Delete(ctx, cacheKey)
	}

	items, err := s.repo.Range(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to load calendar range", "error", err)
		return nil, err
	}

	if raw, err := json.Marshal(items); err == nil {
		s.cache.Set(ctx, cacheKey, raw, s.cacheTTL)
	}
	return items, nil
}

// List returns every published event, soonest first.
func (s *Service) List(ctx context.Context) ([]*Event, error) {
	return s.repo.List(ctx)
}
