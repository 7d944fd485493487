package email

import (
	"errors"
	"net/mail"

	"github.com/campuspub/publication-portal/internal"
)

// Message is a plain-text notification mail.
type Message struct {
	To       []mail.Address
	Subject  string
	TextBody string
}

func (m *Message) HasRecipients() bool { return len(m.To) > 0 }
func (m *Message) HasContent() bool    { return m.TextBody != "" }

// Service is any backend that can deliver notification mail. Delivery is
// fire-and-forget; failures are logged, never surfaced to the sender.
type Service interface {
	SendMessages(messages ...*Message)
}

// New selects the delivery backend from configuration. The console backend is
// the development default.
func New(cfg internal.MailConfig) (Service, error) {
	switch cfg.Backend {
	case "", "console":
		return NewConsoleService(cfg), nil
	case "sendgrid":
		if cfg.SendgridKey == "" {
			return nil, errors.New("sendgrid backend requires an API key")
		}
		return NewSendgridService(cfg), nil
	default:
		return nil, errors.New("unknown mail backend: " + cfg.Backend)
	}
}
