// Package storage abstracts durable blob storage for delivery photos.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore persists image bytes under a name and returns a stable,
// fetchable reference.
type BlobStore interface {
	Store(ctx context.Context, data []byte, name, contentType string) (string, error)
}

var dataURIPrefix = regexp.MustCompile(`^data:([^;]+);base64,`)

// DecodeBase64Image decodes inline image content, stripping any data-URI
// prefix first. The content type from the prefix is returned when present,
// defaulting to image/jpeg.
func DecodeBase64Image(s string) ([]byte, string, error) {
	contentType := "image/jpeg"
	if m := dataURIPrefix.FindStringSubmatch(s); m != nil {
		contentType = m[1]
		s = s[len(m[0]):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, "", fmt.Errorf("decode base64 image: %w", err)
	}
	return data, contentType, nil
}

// UniqueFilename derives a storage name from the original filename:
// role prefix, millisecond timestamp, short random suffix, original
// extension (jpg when the original carries none).
func UniqueFilename(originalName, prefix string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	if ext == "" {
		ext = "jpg"
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("%s%d-%s.%s", prefix, time.Now().UnixMilli(), random, ext)
}

// DiskStore writes blobs under a local directory and references them by URL
// beneath a configured base path, which the HTTP server exposes statically.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", root, err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Store(_ context.Context, data []byte, name, _ string) (string, error) {
	// Names come from UniqueFilename; reject anything path-like regardless.
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %q: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}
