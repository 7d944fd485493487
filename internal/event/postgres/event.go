package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuspub/publication-portal/internal"
	eventDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/event"
	"github.com/campuspub/publication-portal/internal/event"
)

// EventRepository implements the event.Repository interface using GORM
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.Repository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(event.ToDataModel(e)).Error
}

func (r *EventRepository) GetBySourceRequest(ctx context.Context, requestID string) (*event.Event, error) {
	var m eventDatamodel.Event
	err := r.db.WithContext(ctx).Where("source_request_id = ?", requestID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEventNotFound
		}
		return nil, err
	}
	return event.FromDataModel(&m), nil
}

func (r *EventRepository) DeleteBySourceRequest(ctx context.Context, requestID string) error {
	result := r.db.WithContext(ctx).
		Where("source_request_id = ?", requestID).
		Delete(&eventDatamodel.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrEventNotFound
	}
	return nil
}

// Range returns events overlapping [from, to). Events without a start instant
// never appear in a range.
func (r *EventRepository) Range(ctx context.Context, from, to time.Time) ([]*event.Event, error) {
	var models []*eventDatamodel.Event
	err := r.db.WithContext(ctx).
		Where("start_at IS NOT NULL").
		Where("start_at < ?", to).
		Where("COALESCE(end_at, start_at) >= ?", from).
		Order("start_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

func (r *EventRepository) List(ctx context.Context) ([]*event.Event, error) {
	var models []*eventDatamodel.Event
	err := r.db.WithContext(ctx).
		Order("start_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

func fromModels(models []*eventDatamodel.Event) []*event.Event {
	items := make([]*event.Event, 0, len(models))
	for _, m := range models {
		items = append(items, event.FromDataModel(m))
	}
	return items
}
