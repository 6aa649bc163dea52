package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const EventTypeTurnCompleted = "turn_completed"

// UserEvent records gamification signals; XP totals are folded onto the user
// row in the same transaction that writes the event.
type UserEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	EventType string    `gorm:"type:text;not null" json:"event_type"`
	XPAwarded int       `gorm:"not null;default:0" json:"xp_awarded"`

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (UserEvent) TableName() string { return "user_event" }
