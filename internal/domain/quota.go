package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuotaRecord is the per-(user, calendar day) request counter. Exactly one
// row exists per pair; it is created lazily on the first request of the day
// and only ever incremented within that day.
type QuotaRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quota_user_day" json:"user_id"`
	DayBucket string    `gorm:"type:text;not null;uniqueIndex:idx_quota_user_day" json:"day_bucket"`

	RequestCount  int       `gorm:"not null;default:0" json:"request_count"`
	LastRequestAt time.Time `gorm:"not null" json:"last_request_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuotaRecord) TableName() string { return "quota_record" }

// DayBucketFor formats the UTC calendar day key for t.
func DayBucketFor(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
