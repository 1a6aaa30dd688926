package mailer

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

const reminderPlain = `Hello {{.Name}},

You have {{.Stock}} {{.Unit}} of {{.Medicine}} left.
{{- if .Weekly}}
Remember to take your weekly pill on the same day each week.
{{- end}}

Please refill your prophylaxis before you run out.
`

var reminderPlainTemplate = template.Must(template.New("reminder").Parse(reminderPlain))

type reminderData struct {
	Name     string
	Stock    int
	Unit     string
	Medicine string
	Weekly   bool
}

// SendGrid sends e-mail copies of stock reminders.
type SendGrid struct {
	client   *sendgrid.Client
	fromName string
	from     string
}

// New creates a SendGrid mailer. from is the sender address.
func New(apiKey, from string) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: "Pill Reminder",
		from:     from,
	}
}

func renderReminder(u domain.User, m domain.Medicine) (string, error) {
	stock := m.Stock()
	name := u.FullName()
	if name == "" {
		name = "there"
	}
	buf := &bytes.Buffer{}
	err := reminderPlainTemplate.Execute(buf, reminderData{
		Name:     name,
		Stock:    stock,
		Unit:     domain.UnitLabel(stock, m.IntervalDays),
		Medicine: m.Name,
		Weekly:   m.Weekly(),
	})
	if err != nil {
		return "", fmt.Errorf("while templating plain-text email content: %w", err)
	}
	return buf.String(), nil
}

// SendReminder mails the reminder to the user's profile address.
func (s *SendGrid) SendReminder(ctx context.Context, u domain.User, m domain.Medicine) error {
	body, err := renderReminder(u, m)
	if err != nil {
		return err
	}

	message := mail.NewV3Mail()
	message.From = mail.NewEmail(s.fromName, s.from)
	message.Subject = fmt.Sprintf("%s stock is running low", m.Name)

	personalization := mail.NewPersonalization()
	personalization.To = append(personalization.To, mail.NewEmail(u.FullName(), u.Email))
	message.Personalizations = append(message.Personalizations, personalization)
	message.Content = append(message.Content, mail.NewContent("text/plain", body))

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through SendGrid: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
