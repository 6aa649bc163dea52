package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

type QuotaRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dayBucket string) (*domain.QuotaRecord, error)
	// Increment finds-or-creates the (user, day) row and bumps its counter in
	// a single upsert, so two concurrent requests can never lose an update.
	// Returns the counter value after the bump.
	Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dayBucket string) (int, error)
}

type quotaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuotaRepo(db *gorm.DB, log *logger.Logger) QuotaRepo {
	return &quotaRepo{db: db, log: log.With("repo", "QuotaRepo")}
}

func (r *quotaRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dayBucket string) (*domain.QuotaRecord, error) {
	if userID == uuid.Nil || dayBucket == "" {
		return nil, fmt.Errorf("missing quota key")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.QuotaRecord
	err := transaction.WithContext(ctx).
		Model(&domain.QuotaRecord{}).
		Where("user_id = ? AND day_bucket = ?", userID, dayBucket).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *quotaRepo) Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dayBucket string) (int, error) {
	if userID == uuid.Nil || dayBucket == "" {
		return 0, fmt.Errorf("missing quota key")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &domain.QuotaRecord{
		ID:            uuid.New(),
		UserID:        userID,
		DayBucket:     dayBucket,
		RequestCount:  1,
		LastRequestAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := transaction.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "day_bucket"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"request_count":   gorm.Expr("quota_record.request_count + 1"),
					"last_request_at": now,
					"updated_at":      now,
				}),
			},
			clause.Returning{},
		).
		Create(row).Error
	if err != nil {
		return 0, err
	}
	return row.RequestCount, nil
}
