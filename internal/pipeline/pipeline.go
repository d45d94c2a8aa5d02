// Package pipeline orchestrates one POD submission end to end: validate,
// store blobs, recognize text, extract and merge fields, persist, notify.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/00greena/PODagent/internal/common"
	"github.com/00greena/PODagent/internal/entity"
	"github.com/00greena/PODagent/internal/extract"
	"github.com/00greena/PODagent/internal/notify"
	"github.com/00greena/PODagent/internal/ocr"
	"github.com/00greena/PODagent/internal/repository"
	"github.com/00greena/PODagent/internal/storage"
	"github.com/00greena/PODagent/internal/timeutil"
)

// Recognizer is the OCR adapter seam; recognition failures surface as
// empty text, never as errors.
type Recognizer interface {
	RecognizeText(ctx context.Context, img ocr.Image) string
}

// SubmitRequest is one driver submission: two inline-encoded photos and the
// site in/out times. Filenames are optional and only influence stored names.
type SubmitRequest struct {
	PodImage         string `json:"podImage"`
	JobSheetImage    string `json:"jobSheetImage"`
	TimeIn           string `json:"timeIn"`
	TimeOut          string `json:"timeOut"`
	PodFileName      string `json:"podFileName"`
	JobSheetFileName string `json:"jobSheetFileName"`
}

// SubmitResult is the created record's identity plus the merged fields and
// stored image references.
type SubmitResult struct {
	ID               uuid.UUID `json:"id"`
	DeliveryAddress  *string   `json:"deliveryAddress"`
	ReferenceNumber  *string   `json:"referenceNumber"`
	PodImageURL      string    `json:"podImageUrl"`
	JobSheetImageURL string    `json:"jobSheetImageUrl"`
}

// Submitter wires the collaborators of the submission pipeline. All
// dependencies are injected; there is no ambient shared state.
type Submitter struct {
	store    storage.BlobStore
	ocr      Recognizer
	repo     repository.RecordRepository
	notifier notify.Notifier
	zone     string
	now      func() time.Time
	logger   *slog.Logger
}

func NewSubmitter(store storage.BlobStore, rec Recognizer, repo repository.RecordRepository,
	notifier notify.Notifier, zone string, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	if zone == "" {
		zone = timeutil.DefaultZone
	}
	return &Submitter{
		store:    store,
		ocr:      rec,
		repo:     repo,
		notifier: notifier,
		zone:     zone,
		now:      time.Now,
		logger:   logger,
	}
}

// Submit runs the pipeline. Validation, storage and persistence failures
// abort with no record; OCR and notification failures degrade.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validate(req); err != nil {
		s.logger.Warn("submit.validate.failed", "error", err)
		return nil, err
	}

	podData, podCT, err := storage.DecodeBase64Image(req.PodImage)
	if err != nil {
		return nil, common.NewStorageError("pod image is not valid base64", err)
	}
	sheetData, sheetCT, err := storage.DecodeBase64Image(req.JobSheetImage)
	if err != nil {
		return nil, common.NewStorageError("job sheet image is not valid base64", err)
	}

	podURL, err := s.store.Store(ctx, podData, storage.UniqueFilename(req.PodFileName, "pod-"), podCT)
	if err != nil {
		s.logger.Error("submit.storage.failed", "role", "pod", "error", err)
		return nil, common.NewStorageError("failed to store pod image", err)
	}
	sheetURL, err := s.store.Store(ctx, sheetData, storage.UniqueFilename(req.JobSheetFileName, "jobsheet-"), sheetCT)
	if err != nil {
		s.logger.Error("submit.storage.failed", "role", "jobsheet", "error", err)
		return nil, common.NewStorageError("failed to store job sheet image", err)
	}

	// The two recognitions are independent; run them concurrently and join.
	var podText, sheetText string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		podText = s.ocr.RecognizeText(ctx, ocr.Image{Base64: req.PodImage})
	}()
	go func() {
		defer wg.Done()
		sheetText = s.ocr.RecognizeText(ctx, ocr.Image{Base64: req.JobSheetImage})
	}()
	wg.Wait()

	pod := extract.PodExtraction{Fields: extract.ExtractFields(podText), RawText: podText}
	sheet := extract.JobSheetExtraction{Fields: extract.ExtractFields(sheetText), RawText: sheetText}
	merged := extract.Merge(pod, sheet)

	if hours, err := timeutil.ElapsedHours(req.TimeIn, req.TimeOut); err == nil && hours < 0 {
		// Overnight shifts are not wrapped; keep the anomaly visible.
		s.logger.Warn("submit.negative_hours",
			"time_in", req.TimeIn, "time_out", req.TimeOut, "hours", hours)
	}

	createdAt := s.now().In(s.location())
	rec := &entity.DeliveryRecord{
		ID:               uuid.New(),
		TimeIn:           req.TimeIn,
		TimeOut:          req.TimeOut,
		PodImageRef:      podURL,
		JobSheetImageRef: sheetURL,
		DeliveryAddress:  merged.Address,
		ReferenceNumber:  merged.Reference,
		PodText:          pod.RawText,
		JobSheetText:     sheet.RawText,
		WeekNumber:       timeutil.ISOWeekNumber(createdAt),
		Year:             createdAt.Year(),
		CreatedAt:        createdAt,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.logger.Error("submit.persist.failed", "error", err)
		return nil, common.NewPersistenceError("failed to save delivery record", err)
	}

	s.logger.Info("submit.persist.ok",
		"record_id", rec.ID.String(),
		"week_number", rec.WeekNumber,
		"year", rec.Year,
		"has_address", merged.Address != nil,
		"has_reference", merged.Reference != nil,
	)

	if err := s.notifier.Send(ctx, notify.Submission{
		Date:            createdAt.Format("02/01/2006"),
		TimeIn:          req.TimeIn,
		TimeOut:         req.TimeOut,
		DeliveryAddress: merged.Address,
		ReferenceNumber: merged.Reference,
	}); err != nil {
		// Never fail the submission over a notification.
		s.logger.Error("submit.notify.failed", "record_id", rec.ID.String(), "error", err)
	}

	return &SubmitResult{
		ID:               rec.ID,
		DeliveryAddress:  merged.Address,
		ReferenceNumber:  merged.Reference,
		PodImageURL:      podURL,
		JobSheetImageURL: sheetURL,
	}, nil
}

func (s *Submitter) location() *time.Location {
	loc, err := time.LoadLocation(s.zone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validate(req SubmitRequest) error {
	if req.PodImage == "" {
		return common.NewValidationError("podImage is required")
	}
	if req.JobSheetImage == "" {
		return common.NewValidationError("jobSheetImage is required")
	}
	if req.TimeIn == "" {
		return common.NewValidationError("timeIn is required")
	}
	if req.TimeOut == "" {
		return common.NewValidationError("timeOut is required")
	}
	if _, err := timeutil.ParseClock(req.TimeIn); err != nil {
		return common.NewValidationError("timeIn must be HH:MM")
	}
	if _, err := timeutil.ParseClock(req.TimeOut); err != nil {
		return common.NewValidationError("timeOut must be HH:MM")
	}
	return nil
}
