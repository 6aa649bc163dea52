package repos

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.ChatMessage{},
		&domain.ChatTurn{},
		&domain.QuotaRecord{},
		&domain.UserEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestChatTurnRoundTrip(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewChatTurnRepo(gdb, testLogger(t))
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	turn := &domain.ChatTurn{
		ID:                 uuid.New(),
		UserID:             userID,
		UserMessageID:      uuid.New(),
		AssistantMessageID: uuid.New(),
		UserText:           "таблица умножения на 6",
		AssistantText:      "Here is the multiplication table for 6. For example, 6 × 6 = 36.",
		FullText:           "6 × 1 = 6\n6 × 2 = 12",
		ArtifactKind:       "table",
		ArtifactURL:        "https://cdn.test/chat-artifacts/a/b.png",
		StartedAt:          &now,
		CompletedAt:        &now,
	}
	if err := repo.Create(ctx, nil, turn); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, userID, turn.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil")
	}
	if got.UserText != turn.UserText || got.AssistantText != turn.AssistantText {
		t.Fatalf("texts = (%q, %q)", got.UserText, got.AssistantText)
	}
	if got.FullText != turn.FullText {
		t.Fatalf("FullText = %q", got.FullText)
	}
	if got.ArtifactURL != turn.ArtifactURL {
		t.Fatalf("ArtifactURL = %q", got.ArtifactURL)
	}
}

func TestChatTurnGetByIDScopedToUser(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewChatTurnRepo(gdb, testLogger(t))
	ctx := context.Background()

	turn := &domain.ChatTurn{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		UserMessageID:      uuid.New(),
		AssistantMessageID: uuid.New(),
		UserText:           "hi",
		AssistantText:      "hello",
	}
	if err := repo.Create(ctx, nil, turn); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, uuid.New(), turn.ID)
	if err == nil && got != nil {
		t.Fatal("another user could read the turn")
	}
}

func TestChatMessageListByUserOrder(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewChatMessageRepo(gdb, testLogger(t))
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	var rows []*domain.ChatMessage
	for i := 0; i < 3; i++ {
		rows = append(rows, &domain.ChatMessage{
			ID:        uuid.New(),
			UserID:    userID,
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	if err := repo.Create(ctx, nil, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListByUser(ctx, nil, userID, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest two, oldest first.
	if got[0].Content != "message 1" || got[1].Content != "message 2" {
		t.Fatalf("order = [%q, %q]", got[0].Content, got[1].Content)
	}
}

func TestQuotaIncrementUpserts(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewQuotaRepo(gdb, testLogger(t))
	ctx := context.Background()

	userID := uuid.New()
	day := "2026-03-14"

	for want := 1; want <= 3; want++ {
		got, err := repo.Increment(ctx, nil, userID, day)
		if err != nil {
			t.Fatalf("Increment #%d: %v", want, err)
		}
		if got != want {
			t.Fatalf("Increment #%d = %d", want, got)
		}
	}

	var n int64
	if err := gdb.Model(&domain.QuotaRecord{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}

	if got, err := repo.Increment(ctx, nil, userID, "2026-03-15"); err != nil || got != 1 {
		t.Fatalf("new day increment = (%d, %v), want (1, nil)", got, err)
	}

	rec, err := repo.Get(ctx, nil, userID, day)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil || rec.RequestCount != 3 {
		t.Fatalf("record = %+v, want count 3", rec)
	}
}

func TestQuotaGetMissingReturnsNil(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewQuotaRepo(gdb, testLogger(t))

	rec, err := repo.Get(context.Background(), nil, uuid.New(), "2026-03-14")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Fatalf("record = %+v, want nil", rec)
	}
}
