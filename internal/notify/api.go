package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/00greena/PODagent/internal/common"
)

// APINotifier delivers notifications through an HTTPS mail API
// (Resend-compatible: JSON body, bearer key).
type APINotifier struct {
	cfg    common.EmailConfig
	client *http.Client
	logger *slog.Logger
}

func NewAPINotifier(cfg common.EmailConfig, logger *slog.Logger) *APINotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &APINotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type apiPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (n *APINotifier) Send(ctx context.Context, sub Submission) error {
	start := time.Now()

	body, err := json.Marshal(apiPayload{
		From:    n.cfg.From,
		To:      []string{n.cfg.To},
		Subject: subject(sub),
		HTML:    htmlBody(sub),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("mail api status %d: %s", resp.StatusCode, raw)
	}

	n.logger.Info("notify.api.ok",
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
