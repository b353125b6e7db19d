// Package notifier is the out-of-band notification boundary. Delivery is
// already committed when a notifier runs; send failures are isolated per
// recipient and never abort or roll back anything.
package notifier

import (
	"bytes"
	"context"
	"fmt"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"

	"github.com/mailfold/mailfold-backend/internal/models"
)

// Notifier decides whether a recipient gets an out-of-band notification and
// sends it. ShouldNotify answers ("", false) when notifications are disabled
// process-wide or the recipient has no reachable address; such recipients
// are skipped silently, not retried.
type Notifier interface {
	ShouldNotify(n *models.Notification, recipient models.Participant) (string, bool)
	Send(ctx context.Context, n *models.Notification, recipient models.Participant, addr string) error
}

// SMTPConfig holds relay settings for the SMTP notifier
type SMTPConfig struct {
	Addr     string // host:port of the relay
	From     string // envelope and header sender
	Username string // optional PLAIN auth
	Password string
}

// smtpNotifier implements Notifier over an SMTP relay
type smtpNotifier struct {
	config  SMTPConfig
	enabled bool
}

// NewSMTPNotifier creates a relay-backed notifier. The enabled flag carries
// the process-wide email-notifications switch; a disabled notifier answers
// ShouldNotify negatively for everyone.
func NewSMTPNotifier(config SMTPConfig, enabled bool) Notifier {
	return &smtpNotifier{config: config, enabled: enabled}
}

// ShouldNotify resolves the recipient's address for this notification
func (s *smtpNotifier) ShouldNotify(n *models.Notification, recipient models.Participant) (string, bool) {
	if !s.enabled {
		return "", false
	}
	addr := recipient.NotificationAddress(n)
	if addr == "" {
		return "", false
	}
	return addr, true
}

// Send composes a MIME message for the notification and hands it to the relay
func (s *smtpNotifier) Send(_ context.Context, n *models.Notification, _ models.Participant, addr string) error {
	part, err := enmime.Builder().
		From("", s.config.From).
		To("", addr).
		Subject(n.Subject).
		Text([]byte(n.Body)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to compose notification email: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode notification email: %w", err)
	}

	var auth sasl.Client
	if s.config.Username != "" {
		auth = sasl.NewPlainClient("", s.config.Username, s.config.Password)
	}

	if err := smtp.SendMail(s.config.Addr, auth, s.config.From, []string{addr}, &buf); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}

// noopNotifier never notifies anyone
type noopNotifier struct{}

// NewNoopNotifier creates a notifier for deployments without out-of-band
// notifications.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) ShouldNotify(*models.Notification, models.Participant) (string, bool) {
	return "", false
}

func (noopNotifier) Send(context.Context, *models.Notification, models.Participant, string) error {
	return nil
}
