package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/00greena/PODagent/internal/entity"
)

// RecordRepository exposes the create-one and find-many operations the
// pipeline and export builders need over DeliveryRecord.
type RecordRepository interface {
	Create(ctx context.Context, rec *entity.DeliveryRecord) error
	ListAll(ctx context.Context) ([]*entity.DeliveryRecord, error)
	ListByWeek(ctx context.Context, weekNumber, year int) ([]*entity.DeliveryRecord, error)
}

type recordRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecordRepository(db *gorm.DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) Create(ctx context.Context, rec *entity.DeliveryRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		r.logger.Error("failed to create delivery record", "error", err)
		return err
	}
	return nil
}

// ListAll returns every record, newest first.
func (r *recordRepository) ListAll(ctx context.Context) ([]*entity.DeliveryRecord, error) {
	var recs []*entity.DeliveryRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		r.logger.Error("failed to list delivery records", "error", err)
		return nil, err
	}
	return recs, nil
}

// ListByWeek returns the records of one ISO week in creation order.
func (r *recordRepository) ListByWeek(ctx context.Context, weekNumber, year int) ([]*entity.DeliveryRecord, error) {
	var recs []*entity.DeliveryRecord
	err := r.db.WithContext(ctx).
		Where("week_number = ? AND year = ?", weekNumber, year).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		r.logger.Error("failed to list week records",
			"week_number", weekNumber, "year", year, "error", err)
		return nil, err
	}
	return recs, nil
}
