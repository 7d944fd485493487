package email

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/pkg/logger"
)

// ConsoleService writes mail to the log instead of delivering it. Sent
// messages are retained for inspection in tests.
type ConsoleService struct {
	from       mail.Address
	subjPrefix string

	mu   sync.Mutex
	sent []Message
}

func NewConsoleService(cfg internal.MailConfig) *ConsoleService {
	return &ConsoleService{
		from:       mail.Address{Name: cfg.FromName, Address: cfg.FromAddress},
		subjPrefix: cfg.SubjectPrefix,
	}
}

func (svc *ConsoleService) SendMessages(messages ...*Message) {
	for _, msg := range messages {
		if !msg.HasRecipients() || !msg.HasContent() {
			continue
		}

		body := new(strings.Builder)
		fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
		fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
		fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
		fmt.Fprintf(body, "To: %s\r\n\r\n", joinAddresses(msg.To))
		fmt.Fprintf(body, "%s\r\n", msg.TextBody)

		logger.L().Info("mail (console backend)", "message", body.String())

		svc.mu.Lock()
		svc.sent = append(svc.sent, *msg)
		svc.mu.Unlock()
	}
}

// Sent returns a copy of everything delivered so far.
func (svc *ConsoleService) Sent() []Message {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Message, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func joinAddresses(addrs []mail.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}
