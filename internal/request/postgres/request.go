package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuspub/publication-portal/internal"
	requestDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/request"
	"github.com/campuspub/publication-portal/internal/request"
)

// RequestRepository implements the request.Repository interface using GORM
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.Repository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *request.PublicationRequest, attachments []*request.Attachment) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request.ToDataModel(req)).Error; err != nil {
			return err
		}
		for i, a := range attachments {
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			a.RequestID = req.ID
			model := &requestDatamodel.Attachment{
				ID:        a.ID,
				RequestID: a.RequestID,
				Position:  i,
				Filename:  a.Filename,
				MimeType:  a.MimeType,
				SizeBytes: a.SizeBytes,
				Content:   a.Content,
			}
			if err := tx.Create(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*request.PublicationRequest, error) {
	var m requestDatamodel.PublicationRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRequestNotFound
		}
		return nil, err
	}
	return request.FromDataModel(&m), nil
}

func (r *RequestRepository) List(ctx context.Context, filters request.ListFilters) ([]*request.PublicationRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&requestDatamodel.PublicationRequest{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Department != "" {
		// publish_all requests belong to every department
		query = query.Where("publish_all = ? OR departments_json LIKE ?", true, `%"`+filters.Department+`"%`)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where(
			"title LIKE ? OR author LIKE ? OR email LIKE ? OR organization LIKE ? OR location LIKE ? OR description LIKE ?",
			like, like, like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*requestDatamodel.PublicationRequest
	err := query.
		Order("created_at DESC").
		Limit(filters.PageSize).
		Offset((filters.Page - 1) * filters.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*request.PublicationRequest, 0, len(models))
	for _, m := range models {
		items = append(items, request.FromDataModel(m))
	}
	return items, total, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *request.PublicationRequest) error {
	result := r.db.WithContext(ctx).
		Model(&requestDatamodel.PublicationRequest{}).
		Where("id = ?", req.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(request.ToDataModel(req))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&requestDatamodel.Attachment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&requestDatamodel.PublicationRequest{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrRequestNotFound
		}
		return nil
	})
}

func (r *RequestRepository) GetAttachment(ctx context.Context, id string) (*request.Attachment, error) {
	var m requestDatamodel.Attachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAttachmentNotFound
		}
		return nil, err
	}
	return request.AttachmentFromDataModel(&m), nil
}

func (r *RequestRepository) AttachmentMeta(ctx context.Context, requestIDs []string) (map[string][]request.AttachmentMeta, error) {
	if len(requestIDs) == 0 {
		return map[string][]request.AttachmentMeta{}, nil
	}

	var models []requestDatamodel.Attachment
	err := r.db.WithContext(ctx).
		Select("id", "request_id", "position", "filename", "mime_type", "size_bytes").
		Where("request_id IN ?", requestIDs).
		Order("request_id, position").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	meta := make(map[string][]request.AttachmentMeta, len(requestIDs))
	for _, m := range models {
		meta[m.RequestID] = append(meta[m.RequestID], request.AttachmentMeta{
			ID:        m.ID,
			Filename:  m.Filename,
			MimeType:  m.MimeType,
			SizeBytes: m.SizeBytes,
		})
	}
	return meta, nil
}

func (r *RequestRepository) SweepOrphanAttachments(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("request_id NOT IN (?)",
			r.db.Model(&requestDatamodel.PublicationRequest{}).Select("id")).
		Delete(&requestDatamodel.Attachment{})
	return result.RowsAffected, result.Error
}
