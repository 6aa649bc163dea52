package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.User) error
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	// AddXP bumps the XP counter in place; callers run it inside the turn
	// transaction.
	AddXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return &userRepo{db: db, log: log.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.User) error {
	if row == nil || row.Email == "" {
		return fmt.Errorf("invalid user")
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
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user id")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.User
	err := transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("missing email")
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out domain.User
	err := transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, tx, email)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (r *userRepo) AddXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user id")
	}
	if amount == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"xp":         gorm.Expr("xp + ?", amount),
			"updated_at": time.Now().UTC(),
		}).Error
}
