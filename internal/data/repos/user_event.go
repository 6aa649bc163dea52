package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

type UserEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.UserEvent) error
	CountByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string) (int64, error)
}

type userEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserEventRepo(db *gorm.DB, log *logger.Logger) UserEventRepo {
	return &userEventRepo{db: db, log: log.With("repo", "UserEventRepo")}
}

func (r *userEventRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.UserEvent) error {
	if row == nil || row.UserID == uuid.Nil || row.EventType == "" {
		return fmt.Errorf("invalid user event")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if len(row.Metadata) == 0 {
		row.Metadata = []byte(`{}`)
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *userEventRepo) CountByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string) (int64, error) {
	if userID == uuid.Nil || eventType == "" {
		return 0, fmt.Errorf("missing event key")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&domain.UserEvent{}).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Count(&n).Error
	return n, err
}
