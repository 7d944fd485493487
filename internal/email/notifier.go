package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/campuspub/publication-portal/internal/core/events"
)

// Notifier turns request lifecycle events into submitter notifications.
type Notifier struct {
	service Service
}

func NewNotifier(service Service) *Notifier {
	return &Notifier{service: service}
}

func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.RequestApproved, n.onModerated)
	bus.Subscribe(events.RequestRejected, n.onModerated)
}

func (n *Notifier) onModerated(ctx context.Context, e events.Event) error {
	re, ok := e.(events.RequestEvent)
	if !ok || re.Submitter == "" {
		return nil
	}

	var subject, body string
	switch e.EventType() {
	case events.RequestApproved:
		subject = fmt.Sprintf("Your event %q was approved", re.Title)
		body = fmt.Sprintf("Good news! Your publication request %q has been approved and will appear on the calendar.", re.Title)
	case events.RequestRejected:
		subject = fmt.Sprintf("Your event %q was denied", re.Title)
		body = fmt.Sprintf("Your publication request %q was denied.", re.Title)
	default:
		return nil
	}
	if re.Feedback != "" {
		body += "\n\nModerator feedback: " + re.Feedback
	}

	n.service.SendMessages(&Message{
		To:       []mail.Address{{Address: re.Submitter}},
		Subject:  subject,
		TextBody: body,
	})
	return nil
}
