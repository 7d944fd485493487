package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestSubmitted = "request.submitted"
	RequestApproved  = "request.approved"
	RequestRejected  = "request.rejected"
	RequestDeleted   = "request.deleted"
)

// RequestEvent describes a publication request crossing a lifecycle boundary.
type RequestEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	Title     string `json:"title"`
	Submitter string `json:"submitter"` // contact email of the author
	Feedback  string `json:"feedback,omitempty"`
}

func NewRequestEvent(eventType, requestID, title, submitter, feedback string) RequestEvent {
	return RequestEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"title":      title,
			},
		},
		RequestID: requestID,
		Title:     title,
		Submitter: submitter,
		Feedback:  feedback,
	}
}
