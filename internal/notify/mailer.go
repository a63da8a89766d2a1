package notify

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/openwatch/beacon/internal/domain"
)

const DefaultFrom = "alerts@example.com"

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends down-alerts over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

// NewMailer returns nil when no SMTP host is configured, like the other
// channel constructors, so callers can drop it straight into a Multi.
func NewMailer(cfg MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	from := cfg.From
	if from == "" {
		from = DefaultFrom
	}
	return &Mailer{client: client, from: from}, nil
}

func (m *Mailer) Send(ctx context.Context, recipient string, ep domain.Endpoint) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("%s is unavailable!", ep.URL))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your monitored endpoint %s failed its latest health check and is currently marked %s.\n\n"+
			"We will keep checking it on the regular schedule. You will not receive another "+
			"notification for this endpoint within the next hour.\n", ep.URL, ep.Status))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
