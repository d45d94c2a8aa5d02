// Package notify dispatches submission notifications. The transport is
// chosen once at configuration time; send failures are the caller's to log
// and swallow, a notification never fails a submission.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/00greena/PODagent/internal/common"
)

// Submission carries the fields announced after a record is created.
type Submission struct {
	Date            string // dd/mm/yyyy
	TimeIn          string
	TimeOut         string
	DeliveryAddress *string
	ReferenceNumber *string
}

// Notifier is the notification-channel collaborator.
type Notifier interface {
	Send(ctx context.Context, sub Submission) error
}

// FromConfig selects the transport: HTTPS API when a key is configured,
// SMTP when a host is, otherwise a no-op that warns on every send.
func FromConfig(cfg common.EmailConfig, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case cfg.APIKey != "":
		logger.Info("notify.transport", "kind", "api")
		return NewAPINotifier(cfg, logger)
	case cfg.SMTPHost != "":
		logger.Info("notify.transport", "kind", "smtp", "host", cfg.SMTPHost)
		return NewSMTPNotifier(cfg, logger)
	default:
		logger.Warn("notify.transport", "kind", "disabled",
			"reason", "no RESEND_API_KEY or SMTP_HOST configured")
		return NoopNotifier{logger: logger}
	}
}

// NoopNotifier skips sends with a warning so a missing transport is visible
// in logs but never fatal.
type NoopNotifier struct {
	logger *slog.Logger
}

func (n NoopNotifier) Send(_ context.Context, sub Submission) error {
	n.logger.Warn("notify.skipped", "date", sub.Date, "time_in", sub.TimeIn, "time_out", sub.TimeOut)
	return nil
}

func subject(sub Submission) string {
	return fmt.Sprintf("POD Submission - %s", sub.Date)
}

// htmlBody renders the notification table. Optional rows are omitted when
// extraction found nothing.
func htmlBody(sub Submission) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #333;">New POD Submission</h2>`)
	b.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
	row := func(label, value string) {
		b.WriteString(`<tr><td style="padding: 10px; border-bottom: 1px solid #ddd;"><strong>`)
		b.WriteString(label)
		b.WriteString(`:</strong></td><td style="padding: 10px; border-bottom: 1px solid #ddd;">`)
		b.WriteString(value)
		b.WriteString(`</td></tr>`)
	}
	row("Date", sub.Date)
	row("Time In", sub.TimeIn)
	row("Time Out", sub.TimeOut)
	if sub.DeliveryAddress != nil {
		row("Delivery Address", *sub.DeliveryAddress)
	}
	if sub.ReferenceNumber != nil {
		row("Reference Number", *sub.ReferenceNumber)
	}
	b.WriteString(`</table>`)
	b.WriteString(`<p style="margin-top: 20px; color: #666;">This is an automated message from PODagent.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}
