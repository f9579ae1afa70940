// Package notify composes and delivers the failure-summary e-mail.
package notify

import (
	"context"
	"fmt"
	"strings"

	"backsync/internal/config"
	"backsync/internal/model"
	"backsync/internal/syncerr"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Mailer struct {
	cfg config.Notification
	log *zap.Logger
}

func NewMailer(cfg config.Notification, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// NotifyFailures sends one plain-text message enumerating the failed jobs.
// Delivery failure is reported to the caller, who logs and swallows it; it
// never changes the batch outcome.
func (m *Mailer) NotifyFailures(ctx context.Context, failed []model.RunResult) error {
	if len(failed) == 0 {
		m.log.Warn("no failed jobs, skipping notification")
		return nil
	}

	if m.cfg.Email == "" {
		m.log.Warn("no email configuration found, skipping notification")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.SMTPUser); err != nil {
		return fmt.Errorf("%w: %w", syncerr.ErrNotifyDelivery, err)
	}
	if err := msg.To(m.cfg.Email); err != nil {
		return fmt.Errorf("%w: %w", syncerr.ErrNotifyDelivery, err)
	}
	msg.Subject(fmt.Sprintf("Backup Sync Failed - %d job(s)", len(failed)))
	msg.SetBodyString(mail.TypeTextPlain, composeBody(failed))

	client, err := mail.NewClient(m.cfg.SMTPServer,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.SMTPUser),
		mail.WithPassword(m.cfg.SMTPPass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", syncerr.ErrNotifyDelivery, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", syncerr.ErrNotifyDelivery, err)
	}

	m.log.Info("notification email sent",
		zap.Int("failed_jobs", len(failed)),
		zap.String("recipient", m.cfg.Email))

	return nil
}

func composeBody(failed []model.RunResult) string {
	var b strings.Builder
	b.WriteString("The following backup jobs failed:\n\n")

	for _, r := range failed {
		errText := r.Error
		if errText == "" {
			errText = "Unknown error"
		}

		fmt.Fprintf(&b, "- %s\n", r.Name)
		fmt.Fprintf(&b, "  Source: %s\n", r.Source)
		fmt.Fprintf(&b, "  Error: %s\n\n", errText)
	}

	return b.String()
}
