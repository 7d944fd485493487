package request

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// CreateRequestDTO is the submission payload. It arrives either as a JSON
// body with natively typed fields, or as a multipart form where every scalar
// is a canonical string ("true"/"false", decimal integers) and departments is
// a JSON-encoded array string.
type CreateRequestDTO struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Organization string   `json:"organization"`
	Email        string   `json:"email"`
	Location     string   `json:"location"`
	OnCampus     bool     `json:"on_campus"`
	MaxAttendees *int     `json:"max_attendees"`
	Date         string   `json:"date"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Description  string   `json:"description"`
	Departments  []string `json:"departments"`
	PublishAll   bool     `json:"publish_all"`
}

func (dto CreateRequestDTO) Validate() error {
	if strings.TrimSpace(dto.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(dto.Author) == "" {
		return errors.New("author is required")
	}
	if strings.TrimSpace(dto.Email) == "" {
		return errors.New("email is required")
	}
	if dto.Date == "" {
		return errors.New("date is required")
	}
	if dto.MaxAttendees != nil && *dto.MaxAttendees <= 0 {
		return errors.New("max_attendees must be a positive integer")
	}
	if dto.PublishAll && len(dto.Departments) > 0 {
		return errors.New("publish_all cannot be combined with an explicit department list")
	}
	return nil
}

// ParseCreateRequest decodes the create payload from either encoding. The
// caller still owns the multipart file parts.
func ParseCreateRequest(r *http.Request) (CreateRequestDTO, []*multipart.FileHeader, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return CreateRequestDTO{}, nil, err
		}
		dto, err := createFromForm(r.MultipartForm.Value)
		if err != nil {
			return CreateRequestDTO{}, nil, err
		}
		return dto, r.MultipartForm.File["attachments"], nil
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return CreateRequestDTO{}, nil, errors.New("invalid request body")
	}
	return dto, nil, nil
}

const maxUploadBytes = 32 << 20

func createFromForm(values map[string][]string) (CreateRequestDTO, error) {
	get := func(key string) string {
		if v, ok := values[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	dto := CreateRequestDTO{
		Title:        get("title"),
		Author:       get("author"),
		Organization: get("organization"),
		Email:        get("email"),
		Location:     get("location"),
		Date:         get("date"),
		StartTime:    get("start_time"),
		EndTime:      get("end_time"),
		Description:  get("description"),
	}

	if raw := get("on_campus"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return dto, errors.New("on_campus must be a boolean string")
		}
		dto.OnCampus = v
	}
	if raw := get("publish_all"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return dto, errors.New("publish_all must be a boolean string")
		}
		dto.PublishAll = v
	}
	if raw := get("max_attendees"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return dto, errors.New("max_attendees must be a decimal integer")
		}
		dto.MaxAttendees = &v
	}
	if raw := get("departments"); raw != "" {
		var departments []string
		if err := json.Unmarshal([]byte(raw), &departments); err != nil {
			return dto, errors.New("departments must be a JSON-encoded array")
		}
		dto.Departments = departments
	}

	return dto, nil
}

// UpdateStatusDTO drives the moderation transition. Status accepts the UI
// alias "denied" and normalizes it to "rejected".
type UpdateStatusDTO struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

func (dto UpdateStatusDTO) Validate() error {
	if dto.ID == "" {
		return errors.New("id is required")
	}
	if !ValidStatus(NormalizeStatus(dto.Status)) {
		return errors.New("status must be one of pending, approved, rejected")
	}
	return nil
}

type DeleteRequestDTO struct {
	ID string `json:"id"`
}

func (dto DeleteRequestDTO) Validate() error {
	if dto.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

// UpdateRequestDTO is the staff edit-and-save payload; id and status are
// never editable through it.
type UpdateRequestDTO struct {
	ID string `json:"id"`
	CreateRequestDTO
}

func (dto UpdateRequestDTO) Validate() error {
	if dto.ID == "" {
		return errors.New("id is required")
	}
	return dto.CreateRequestDTO.Validate()
}

// ListFilters narrows the moderation listing. Department and Status treat ""
// and "all" as no filter.
type ListFilters struct {
	Department string
	Status     string
	Query      string
	Page       int
	PageSize   int
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Normalize applies defaults, the status alias, and the "all" sentinel.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if strings.EqualFold(f.Department, "all") {
		f.Department = ""
	}
	f.Status = NormalizeStatus(strings.ToLower(f.Status))
	if strings.EqualFold(f.Status, "all") {
		f.Status = ""
	}
	return f
}
