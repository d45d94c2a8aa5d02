package ocr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/00greena/PODagent/internal/storage"
)

// Image is either inline encoded content or a fetchable reference.
// Inline content wins when both are set.
type Image struct {
	Base64 string // inline content, with or without a data-URI prefix
	URL    string // stored-blob reference
}

// Adapter resolves an image to bytes and runs the recognition engine.
type Adapter struct {
	engine Engine
	client *http.Client
	logger *slog.Logger
}

func NewAdapter(engine Engine, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		engine: engine,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// RecognizeText returns the raw text recognized on the image. Any failure,
// from decoding to the engine itself, yields empty text: the caller treats
// that as "no fields extractable", never as a fatal error.
func (a *Adapter) RecognizeText(ctx context.Context, img Image) string {
	data, err := a.resolve(ctx, img)
	if err != nil {
		a.logger.Warn("ocr.resolve_failed", "error", err)
		return ""
	}

	text, err := a.engine.Recognize(ctx, data)
	if err != nil {
		a.logger.Warn("ocr.recognize_failed", "error", err)
		return ""
	}
	return text
}

func (a *Adapter) resolve(ctx context.Context, img Image) ([]byte, error) {
	if img.Base64 != "" {
		data, _, err := storage.DecodeBase64Image(img.Base64)
		return data, err
	}
	if img.URL != "" {
		return a.fetch(ctx, img.URL)
	}
	return nil, fmt.Errorf("image has neither inline content nor a reference")
}

func (a *Adapter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
