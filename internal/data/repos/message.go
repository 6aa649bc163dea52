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

type ChatMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.ChatMessage) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, log *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: log.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.ChatMessage) error {
	if len(rows) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row == nil || row.UserID == uuid.Nil || row.Role == "" {
			return fmt.Errorf("invalid chat message")
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
		if len(row.Metadata) == 0 {
			row.Metadata = []byte(`{}`)
		}
	}
	return transaction.WithContext(ctx).Create(rows).Error
}

func (r *chatMessageRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user id")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var msgs []*domain.ChatMessage
	if err := transaction.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
