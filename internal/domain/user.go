package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanTierFree    = "free"
	PlanTierPremium = "premium"
)

type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Email        string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`
	FirstName    string `gorm:"type:text;not null" json:"first_name"`
	LastName     string `gorm:"type:text;not null" json:"last_name"`

	PlanTier string `gorm:"type:text;not null;default:'free'" json:"plan_tier"`
	XP       int64  `gorm:"not null;default:0" json:"xp"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "app_user" }

func (u *User) Unlimited() bool { return u.PlanTier == PlanTierPremium }
