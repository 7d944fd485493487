package request

import (
	"encoding/json"
	"time"

	requestDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/request"
)

// PublicationRequest is a proposed event awaiting moderation.
type PublicationRequest struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Author       string           `json:"author"`
	Organization string           `json:"organization"`
	Email        string           `json:"email"`
	Location     string           `json:"location"`
	OnCampus     bool             `json:"on_campus"`
	MaxAttendees *int             `json:"max_attendees"`
	Date         string           `json:"date"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	StartISO     string           `json:"start_iso,omitempty"`
	EndISO       string           `json:"end_iso,omitempty"`
	Description  string           `json:"description"`
	Departments  []string         `json:"departments"`
	PublishAll   bool             `json:"publish_all"`
	Attachments  []AttachmentMeta `json:"attachments"`
	Status       string           `json:"status"`
	Feedback     string           `json:"feedback"`
	IsVisible    bool             `json:"is_visible"`
	SubmitterID  string           `json:"-"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"-"`
}

// AttachmentMeta is the attachment listing entry; content is served separately.
type AttachmentMeta struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size"`
}

// Attachment carries the stored blob for download.
type Attachment struct {
	ID        string
	RequestID string
	Filename  string
	MimeType  string
	SizeBytes int64
	Content   []byte
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// The UI name for a rejection. The wire value is always "rejected";
	// "denied" is accepted on input and never stored.
	UIStatusDenied = "denied"
)

// NormalizeStatus maps the UI alias onto the stored value. Unknown values
// pass through for the caller to validate.
func NormalizeStatus(s string) string {
	if s == UIStatusDenied {
		return StatusRejected
	}
	return s
}

// ValidStatus reports whether s is a stored status value.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (r *PublicationRequest) CanTransition() bool {
	return r.Status == StatusPending || r.Status == StatusApproved || r.Status == StatusRejected
}

// Approve marks the request approved and visible.
func (r *PublicationRequest) Approve(feedback string) {
	now := time.Now().UTC()
	r.Status = StatusApproved
	r.IsVisible = true
	r.Feedback = feedback
	r.ProcessedAt = &now
	r.UpdatedAt = now
}

// Reject marks the request rejected and hides it from the calendar.
func (r *PublicationRequest) Reject(feedback string) {
	now := time.Now().UTC()
	r.Status = StatusRejected
	r.IsVisible = false
	r.Feedback = feedback
	r.ProcessedAt = &now
	r.UpdatedAt = now
}

// Reopen returns the request to pending, hiding it again.
func (r *PublicationRequest) Reopen(feedback string) {
	now := time.Now().UTC()
	r.Status = StatusPending
	r.IsVisible = false
	r.Feedback = feedback
	r.ProcessedAt = nil
	r.UpdatedAt = now
}

func ToDataModel(r *PublicationRequest) *requestDatamodel.PublicationRequest {
	departments := r.Departments
	if departments == nil {
		departments = []string{}
	}
	departmentsJSON, _ := json.Marshal(departments)

	var startAt, endAt *time.Time
	if r.StartISO != "" {
		if t, err := time.Parse(time.RFC3339, r.StartISO); err == nil {
			startAt = &t
		}
	}
	if r.EndISO != "" {
		if t, err := time.Parse(time.RFC3339, r.EndISO); err == nil {
			endAt = &t
		}
	}

	return &requestDatamodel.PublicationRequest{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		Organization:    r.Organization,
		Email:           r.Email,
		Location:        r.Location,
		OnCampus:        r.OnCampus,
		MaxAttendees:    r.MaxAttendees,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		StartAt:         startAt,
		EndAt:           endAt,
		Description:     r.Description,
		DepartmentsJSON: string(departmentsJSON),
		PublishAll:      r.PublishAll,
		Status:          r.Status,
		Feedback:        r.Feedback,
		IsVisible:       r.IsVisible,
		SubmitterID:     r.SubmitterID,
		ProcessedAt:     r.ProcessedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromDataModel(m *requestDatamodel.PublicationRequest) *PublicationRequest {
	var departments []string
	if err := json.Unmarshal([]byte(m.DepartmentsJSON), &departments); err != nil || departments == nil {
		departments = []string{}
	}

	var startISO, endISO string
	if m.StartAt != nil {
		startISO = m.StartAt.UTC().Format(time.RFC3339)
	}
	if m.EndAt != nil {
		endISO = m.EndAt.UTC().Format(time.RFC3339)
	}

	return &PublicationRequest{
		ID:           m.ID,
		Title:        m.Title,
		Author:       m.Author,
		Organization: m.Organization,
		Email:        m.Email,
		Location:     m.Location,
		OnCampus:     m.OnCampus,
		MaxAttendees: m.MaxAttendees,
		Date:         m.Date,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		StartISO:     startISO,
		EndISO:       endISO,
		Description:  m.Description,
		Departments:  departments,
		PublishAll:   m.PublishAll,
		Attachments:  []AttachmentMeta{},
		Status:       m.Status,
		Feedback:     m.Feedback,
		IsVisible:    m.IsVisible,
		SubmitterID:  m.SubmitterID,
		ProcessedAt:  m.ProcessedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func AttachmentFromDataModel(m *requestDatamodel.Attachment) *Attachment {
	return &Attachment{
		ID:        m.ID,
		RequestID: m.RequestID,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		SizeBytes: m.SizeBytes,
		Content:   m.Content,
	}
}
