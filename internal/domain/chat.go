package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Role   string    `gorm:"type:text;not null" json:"role"`

	Content string `gorm:"type:text;not null" json:"content"`

	ArtifactKind string `gorm:"type:text" json:"artifact_kind,omitempty"`
	ArtifactURL  string `gorm:"type:text" json:"artifact_url,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChatMessage) TableName() string { return "chat_message" }

// ChatTurn ties one user message to the assistant message generated for it.
// Written exactly once, after synthesis succeeds; immutable afterwards.
type ChatTurn struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	UserMessageID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_message_id"`
	AssistantMessageID uuid.UUID `gorm:"type:uuid;not null;index" json:"assistant_message_id"`

	UserText      string `gorm:"type:text;not null" json:"user_text"`
	AssistantText string `gorm:"type:text;not null" json:"assistant_text"`
	// FullText keeps the loosely bounded synthesis output for context; the
	// delivered text lives in AssistantText.
	FullText string `gorm:"type:text;not null" json:"full_text"`

	ArtifactKind string `gorm:"type:text" json:"artifact_kind,omitempty"`
	ArtifactURL  string `gorm:"type:text" json:"artifact_url,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChatTurn) TableName() string { return "chat_turn" }
