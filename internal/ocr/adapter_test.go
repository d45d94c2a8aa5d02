package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubEngine struct {
	text string
	err  error
	got  []byte
}

func (s *stubEngine) Recognize(_ context.Context, image []byte) (string, error) {
	s.got = image
	return s.text, s.err
}

func TestRecognizeTextInline(t *testing.T) {
	engine := &stubEngine{text: "Deliver to: 12 Oak Lane"}
	a := NewAdapter(engine, nil)

	payload := []byte{0x89, 0x50, 0x4E, 0x47}
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	got := a.RecognizeText(context.Background(), Image{Base64: encoded})
	if got != "Deliver to: 12 Oak Lane" {
		t.Errorf("text = %q", got)
	}
	if string(engine.got) != string(payload) {
		t.Error("engine did not receive decoded bytes")
	}
}

func TestRecognizeTextByURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("imagebytes"))
	}))
	defer ts.Close()

	engine := &stubEngine{text: "Ref: AB-123456"}
	a := NewAdapter(engine, nil)

	got := a.RecognizeText(context.Background(), Image{URL: ts.URL + "/pod-1.jpg"})
	if got != "Ref: AB-123456" {
		t.Errorf("text = %q", got)
	}
	if string(engine.got) != "imagebytes" {
		t.Errorf("engine received %q", engine.got)
	}
}

func TestRecognizeTextDegradesToEmpty(t *testing.T) {
	a := NewAdapter(&stubEngine{err: errors.New("tesseract crashed")}, nil)
	valid := base64.StdEncoding.EncodeToString([]byte("x"))
	if got := a.RecognizeText(context.Background(), Image{Base64: valid}); got != "" {
		t.Errorf("engine failure should yield empty text, got %q", got)
	}

	if got := a.RecognizeText(context.Background(), Image{Base64: "%%%"}); got != "" {
		t.Errorf("decode failure should yield empty text, got %q", got)
	}

	if got := a.RecognizeText(context.Background(), Image{}); got != "" {
		t.Errorf("empty image should yield empty text, got %q", got)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	if got := a.RecognizeText(context.Background(), Image{URL: ts.URL}); got != "" {
		t.Errorf("fetch failure should yield empty text, got %q", got)
	}
}
