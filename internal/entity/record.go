package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryRecord is one proof-of-delivery submission. Records are created
// exactly once by the submission pipeline and never updated afterwards.
type DeliveryRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TimeIn           string    `gorm:"size:5;not null" json:"time_in"`
	TimeOut          string    `gorm:"size:5;not null" json:"time_out"`
	PodImageRef      string    `gorm:"size:512" json:"pod_image_ref"`
	JobSheetImageRef string    `gorm:"size:512" json:"job_sheet_image_ref"`
	DeliveryAddress  *string   `gorm:"size:512" json:"delivery_address,omitempty"`
	ReferenceNumber  *string   `gorm:"size:64" json:"reference_number,omitempty"`

	// Raw OCR text per source image, retained for audit and debugging only.
	PodText      string `gorm:"type:text" json:"pod_text"`
	JobSheetText string `gorm:"type:text" json:"job_sheet_text"`

	// Derived from CreatedAt once at creation time, never recomputed.
	WeekNumber int       `gorm:"not null;index:idx_delivery_records_week" json:"week_number"`
	Year       int       `gorm:"not null;index:idx_delivery_records_week" json:"year"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName keeps the table name explicit rather than relying on pluralization.
func (DeliveryRecord) TableName() string { return "delivery_records" }

// BeforeCreate assigns the record identity when the caller has not.
func (r *DeliveryRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// WeeklySummary is one weekday's activity within an ISO week. It is computed
// on demand from DeliveryRecords and never persisted.
type WeeklySummary struct {
	Day         string
	Deliveries  int
	TotalHours  float64
	FirstTimeIn string
	LastTimeOut string
}
