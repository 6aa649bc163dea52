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

type ChatTurnRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.ChatTurn) error
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, turnID uuid.UUID) (*domain.ChatTurn, error)
	GetByUserMessageID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, userMessageID uuid.UUID) (*domain.ChatTurn, error)
}

type chatTurnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatTurnRepo(db *gorm.DB, log *logger.Logger) ChatTurnRepo {
	return &chatTurnRepo{db: db, log: log.With("repo", "ChatTurnRepo")}
}

func (r *chatTurnRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.ChatTurn) error {
	if row == nil || row.UserID == uuid.Nil || row.UserMessageID == uuid.Nil || row.AssistantMessageID == uuid.Nil {
		return fmt.Errorf("invalid chat turn")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	if len(row.Metadata) == 0 {
		row.Metadata = []byte(`{}`)
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *chatTurnRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, turnID uuid.UUID) (*domain.ChatTurn, error) {
	if userID == uuid.Nil || turnID == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.ChatTurn
	err := transaction.WithContext(ctx).
		Model(&domain.ChatTurn{}).
		Where("id = ? AND user_id = ?", turnID, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *chatTurnRepo) GetByUserMessageID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, userMessageID uuid.UUID) (*domain.ChatTurn, error) {
	if userID == uuid.Nil || userMessageID == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.ChatTurn
	err := transaction.WithContext(ctx).
		Model(&domain.ChatTurn{}).
		Where("user_id = ? AND user_message_id = ?", userID, userMessageID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
