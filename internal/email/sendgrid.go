package email

import (
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/pkg/logger"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridService delivers mail through the Sendgrid v3 API.
type SendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridService(cfg internal.MailConfig) *SendgridService {
	return &SendgridService{
		key:        cfg.SendgridKey,
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		subjPrefix: cfg.SubjectPrefix,
	}
}

func (svc *SendgridService) SendMessages(messages ...*Message) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if msg.HasRecipients() && msg.HasContent() {
				svc.send(msg)
			}
		}()
	}
}

func (svc *SendgridService) send(msg *Message) {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))

	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		logger.L().Error("sending email failed", "error", err)
	} else if res.StatusCode >= http.StatusBadRequest {
		logger.L().Error("sending email rejected", "status", res.StatusCode, "body", res.Body)
	}
}
