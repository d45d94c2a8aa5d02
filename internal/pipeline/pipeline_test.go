package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/00greena/PODagent/internal/entity"
	"github.com/00greena/PODagent/internal/notify"
	"github.com/00greena/PODagent/internal/ocr"
)

type fakeStore struct {
	stored []string
	fail   bool
}

func (f *fakeStore) Store(_ context.Context, _ []byte, name, _ string) (string, error) {
	if f.fail {
		return "", errors.New("blob backend down")
	}
	f.stored = append(f.stored, name)
	return "https://blobs.test/" + name, nil
}

// fakeRecognizer maps decoded image content to canned OCR text.
type fakeRecognizer struct {
	texts map[string]string
}

func (f *fakeRecognizer) RecognizeText(_ context.Context, img ocr.Image) string {
	decoded, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return ""
	}
	return f.texts[string(decoded)]
}

type fakeRepo struct {
	records []*entity.DeliveryRecord
	fail    bool
}

func (f *fakeRepo) Create(_ context.Context, rec *entity.DeliveryRecord) error {
	if f.fail {
		return errors.New("insert failed")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*entity.DeliveryRecord, error) {
	return f.records, nil
}

func (f *fakeRepo) ListByWeek(_ context.Context, _, _ int) ([]*entity.DeliveryRecord, error) {
	return f.records, nil
}

type fakeNotifier struct {
	sent []notify.Submission
	fail bool
}

func (f *fakeNotifier) Send(_ context.Context, sub notify.Submission) error {
	if f.fail {
		return errors.New("transport refused")
	}
	f.sent = append(f.sent, sub)
	return nil
}

func enc(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func newTestSubmitter(store *fakeStore, rec *fakeRecognizer, repo *fakeRepo, n *fakeNotifier) *Submitter {
	s := NewSubmitter(store, rec, repo, n, "UTC", slog.Default())
	s.now = func() time.Time {
		return time.Date(2024, 7, 10, 14, 30, 0, 0, time.UTC)
	}
	return s
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		PodImage:      enc("pod photo"),
		JobSheetImage: enc("sheet photo"),
		TimeIn:        "09:00",
		TimeOut:       "17:30",
	}
}

func TestSubmitMergePrefersPod(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{
		"pod photo":   "Deliver to: 12 Oak Lane, Springfield\n\nRef: AB-123456",
		"sheet photo": "Address: 99 Other Road\nRef: ZZ-999999",
	}}
	repo := &fakeRepo{}
	notif := &fakeNotifier{}
	s := newTestSubmitter(&fakeStore{}, rec, repo, notif)

	res, err := s.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.DeliveryAddress == nil || *res.DeliveryAddress != "12 Oak Lane, Springfield" {
		t.Errorf("address = %v, want pod value", res.DeliveryAddress)
	}
	if res.ReferenceNumber == nil || *res.ReferenceNumber != "AB-123456" {
		t.Errorf("reference = %v, want pod value", res.ReferenceNumber)
	}
	if len(repo.records) != 1 {
		t.Fatalf("records = %d, want 1", len(repo.records))
	}

	stored := repo.records[0]
	if stored.WeekNumber != 28 || stored.Year != 2024 {
		t.Errorf("week/year = %d/%d, want 28/2024", stored.WeekNumber, stored.Year)
	}
	if stored.PodText == "" || stored.JobSheetText == "" {
		t.Error("raw OCR text should be retained for audit")
	}
	if len(notif.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notif.sent))
	}
	if notif.sent[0].Date != "10/07/2024" {
		t.Errorf("notification date = %q", notif.sent[0].Date)
	}
}

func TestSubmitFallsBackToJobSheet(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{
		"pod photo":   "illegible scrawl",
		"sheet photo": "Address: 99 Other Road",
	}}
	repo := &fakeRepo{}
	s := newTestSubmitter(&fakeStore{}, rec, repo, &fakeNotifier{})

	res, err := s.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.DeliveryAddress == nil || *res.DeliveryAddress != "99 Other Road" {
		t.Errorf("address = %v, want job-sheet value", res.DeliveryAddress)
	}
	if res.ReferenceNumber != nil {
		t.Errorf("reference = %q, want nil", *res.ReferenceNumber)
	}
}

func TestSubmitValidation(t *testing.T) {
	repo := &fakeRepo{}
	store := &fakeStore{}
	s := newTestSubmitter(store, &fakeRecognizer{}, repo, &fakeNotifier{})

	cases := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing pod image", func(r *SubmitRequest) { r.PodImage = "" }},
		{"missing job sheet image", func(r *SubmitRequest) { r.JobSheetImage = "" }},
		{"missing time in", func(r *SubmitRequest) { r.TimeIn = "" }},
		{"missing time out", func(r *SubmitRequest) { r.TimeOut = "" }},
		{"malformed time", func(r *SubmitRequest) { r.TimeIn = "25:99" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			if _, err := s.Submit(context.Background(), req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	if len(repo.records) != 0 {
		t.Errorf("validation failures created %d records", len(repo.records))
	}
	if len(store.stored) != 0 {
		t.Errorf("validation failures stored %d blobs", len(store.stored))
	}
}

func TestSubmitDegradesWhenOCRFindsNothing(t *testing.T) {
	repo := &fakeRepo{}
	// Recognizer has no text for either image: extraction degrades, record still lands.
	s := newTestSubmitter(&fakeStore{}, &fakeRecognizer{texts: map[string]string{}}, repo, &fakeNotifier{})

	res, err := s.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.DeliveryAddress != nil || res.ReferenceNumber != nil {
		t.Error("expected nil fields on empty OCR text")
	}
	if len(repo.records) != 1 {
		t.Errorf("records = %d, want 1", len(repo.records))
	}
}

func TestSubmitStorageFailureAborts(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestSubmitter(&fakeStore{fail: true}, &fakeRecognizer{}, repo, &fakeNotifier{})

	if _, err := s.Submit(context.Background(), validRequest()); err == nil {
		t.Fatal("expected storage error")
	}
	if len(repo.records) != 0 {
		t.Error("storage failure must not create a record")
	}
}

func TestSubmitPersistenceFailureAborts(t *testing.T) {
	notif := &fakeNotifier{}
	s := newTestSubmitter(&fakeStore{}, &fakeRecognizer{}, &fakeRepo{fail: true}, notif)

	if _, err := s.Submit(context.Background(), validRequest()); err == nil {
		t.Fatal("expected persistence error")
	}
	if len(notif.sent) != 0 {
		t.Error("no notification should go out for a failed submission")
	}
}

func TestSubmitNotificationFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestSubmitter(&fakeStore{}, &fakeRecognizer{}, repo, &fakeNotifier{fail: true})

	res, err := s.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res == nil || len(repo.records) != 1 {
		t.Error("submission should succeed despite notification failure")
	}
}

func TestSubmitStoredNamesCarryRolePrefix(t *testing.T) {
	store := &fakeStore{}
	s := newTestSubmitter(store, &fakeRecognizer{}, &fakeRepo{}, &fakeNotifier{})

	req := validRequest()
	req.PodFileName = "signed.png"
	if _, err := s.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.stored) != 2 {
		t.Fatalf("stored = %d blobs, want 2", len(store.stored))
	}
	if !strings.HasPrefix(store.stored[0], "pod-") || !strings.HasSuffix(store.stored[0], ".png") {
		t.Errorf("pod blob name = %q", store.stored[0])
	}
	if !strings.HasPrefix(store.stored[1], "jobsheet-") || !strings.HasSuffix(store.stored[1], ".jpg") {
		t.Errorf("job sheet blob name = %q", store.stored[1])
	}
}
