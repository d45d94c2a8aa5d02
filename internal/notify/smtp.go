package notify

import (
	"context"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/00greena/PODagent/internal/common"
)

// SMTPNotifier delivers notifications over plain SMTP, the fallback when no
// mail API key is configured.
type SMTPNotifier struct {
	cfg    common.EmailConfig
	dialer *gomail.Dialer
	logger *slog.Logger
}

func NewSMTPNotifier(cfg common.EmailConfig, logger *slog.Logger) *SMTPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		logger: logger,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", subject(sub))
	m.SetBody("text/html", htmlBody(sub))

	if err := n.dialer.DialAndSend(m); err != nil {
		return err
	}
	n.logger.Info("notify.smtp.ok", "to", n.cfg.To)
	return nil
}
