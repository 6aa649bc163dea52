package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/domain"
)

func newQuotaFixture(t *testing.T, limit int) (QuotaService, *domain.User) {
	t.Helper()
	log := testLogger(t)
	gdb := newTestDB(t)

	user := &domain.User{
		ID:        uuid.New(),
		Email:     "student@example.com",
		PlanTier:  domain.PlanTierFree,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewQuotaService(repos.NewQuotaRepo(gdb, log), limit, log), user
}

func TestQuotaAdmitAndIncrementToLimit(t *testing.T) {
	pinNow(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, user := newQuotaFixture(t, 15)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		decision, err := svc.Admit(ctx, user)
		if err != nil {
			t.Fatalf("Admit #%d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("Admit #%d denied: %+v", i, decision)
		}
		if decision.Used != i-1 {
			t.Fatalf("Admit #%d Used = %d, want %d", i, decision.Used, i-1)
		}

		total, justReached, err := svc.Increment(ctx, nil, user)
		if err != nil {
			t.Fatalf("Increment #%d: %v", i, err)
		}
		if total != i {
			t.Fatalf("Increment #%d total = %d, want %d", i, total, i)
		}
		if wantReached := i == 15; justReached != wantReached {
			t.Fatalf("Increment #%d limitJustReached = %v, want %v", i, justReached, wantReached)
		}
	}

	decision, err := svc.Admit(ctx, user)
	if err != nil {
		t.Fatalf("Admit after limit: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("Admit after limit allowed: %+v", decision)
	}
	if decision.Code != ErrCodeQuotaExceeded {
		t.Fatalf("Code = %q, want %q", decision.Code, ErrCodeQuotaExceeded)
	}
	if decision.Message == "" {
		t.Fatal("denial message empty")
	}
}

func TestQuotaResetsOnNewDay(t *testing.T) {
	pinNow(t, time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC))
	svc, user := newQuotaFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Increment(ctx, nil, user); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if decision, _ := svc.Admit(ctx, user); decision.Allowed {
		t.Fatal("expected denial at limit")
	}

	pinNow(t, time.Date(2026, 3, 15, 0, 10, 0, 0, time.UTC))

	decision, err := svc.Admit(ctx, user)
	if err != nil {
		t.Fatalf("Admit next day: %v", err)
	}
	if !decision.Allowed || decision.Used != 0 {
		t.Fatalf("next day decision = %+v, want fresh allow", decision)
	}
	total, justReached, err := svc.Increment(ctx, nil, user)
	if err != nil {
		t.Fatalf("Increment next day: %v", err)
	}
	if total != 1 || justReached {
		t.Fatalf("next day increment = (%d, %v), want (1, false)", total, justReached)
	}
}

func TestQuotaPremiumUnlimited(t *testing.T) {
	pinNow(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, user := newQuotaFixture(t, 1)
	user.PlanTier = domain.PlanTierPremium
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := svc.Admit(ctx, user)
		if err != nil {
			t.Fatalf("Admit: %v", err)
		}
		if !decision.Allowed || decision.Limit != -1 {
			t.Fatalf("premium decision = %+v", decision)
		}
		_, justReached, err := svc.Increment(ctx, nil, user)
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if justReached {
			t.Fatal("premium user reported limitJustReached")
		}
	}
}
