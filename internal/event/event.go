package event

import (
	"encoding/json"
	"time"

	eventDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/event"
)

// Event is the published calendar projection of an approved publication
// request.
type Event struct {
	ID              string     `json:"id"`
	SourceRequestID string     `json:"source_request_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	PublishAll      bool       `json:"publish_all"`
	Departments     []string   `json:"departments"`
	StartAt         *time.Time `json:"start,omitempty"`
	EndAt           *time.Time `json:"end,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func ToDataModel(e *Event) *eventDatamodel.Event {
	departments := e.Departments
	if departments == nil {
		departments = []string{}
	}
	departmentsJSON, _ := json.Marshal(departments)

	return &eventDatamodel.Event{
		ID:              e.ID,
		SourceRequestID: e.SourceRequestID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		PublishAll:      e.PublishAll,
		DepartmentsJSON: string(departmentsJSON),
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		CreatedAt:       e.CreatedAt,
	}
}

func FromDataModel(m *eventDatamodel.Event) *Event {
	var departments []string
	if err := json.Unmarshal([]byte(m.DepartmentsJSON), &departments); err != nil || departments == nil {
		departments = []string{}
	}

	return &Event{
		ID:              m.ID,
		SourceRequestID: m.SourceRequestID,
		Title:           m.Title,
		Description:     m.Description,
		Location:        m.Location,
		PublishAll:      m.PublishAll,
		Departments:     departments,
		StartAt:         m.StartAt,
		EndAt:           m.EndAt,
		CreatedAt:       m.CreatedAt,
	}
}
