// Package ocr turns delivery photos into raw text. Recognition is
// best-effort: the adapter never fails a submission, it degrades to
// empty text instead.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// Engine is the external text-recognition collaborator.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

type Config struct {
	Language    string // default "eng"
	TessdataDir string
}

// TesseractEngine runs Tesseract through gosseract. A fresh client is
// created per call and always closed, so the underlying engine handle is
// released regardless of outcome.
type TesseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func NewTesseractEngine(cfg Config, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &TesseractEngine{cfg: cfg, logger: logger}
}

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			e.logger.Warn("ocr.client.close_error", "error", err)
		}
	}()

	if err := client.SetLanguage(e.cfg.Language); err != nil {
		return "", fmt.Errorf("set language %q: %w", e.cfg.Language, err)
	}
	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata dir: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}

	e.logger.Debug("ocr.recognize.ok",
		"bytes", len(image),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
