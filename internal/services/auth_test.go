package services

import (
	"context"
	"testing"

	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/domain"
)

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	log := testLogger(t)
	gdb := newTestDB(t)
	return NewAuthService(repos.NewUserRepo(gdb, log), "test-secret", 3600, log)
}

func TestAuthRegisterLoginRoundTrip(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:     "Student@Example.com",
		Password:  "correct horse",
		FirstName: "Sam",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "student@example.com" {
		t.Fatalf("email not normalized: %q", reg.User.Email)
	}
	if reg.User.PlanTier != domain.PlanTierFree {
		t.Fatalf("plan tier = %q", reg.User.PlanTier)
	}
	if reg.AccessToken == "" {
		t.Fatal("no access token issued")
	}

	login, err := svc.Login(ctx, LoginRequest{Email: "student@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Fatalf("login user %s != registered user %s", login.User.ID, reg.User.ID)
	}

	user, err := svc.UserFromToken(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if user.ID != reg.User.ID {
		t.Fatalf("token user %s != registered user %s", user.ID, reg.User.ID)
	}
}

func TestAuthRejectsBadInput(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "long enough"}); err == nil {
		t.Fatal("bad email accepted")
	}
	if _, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "short"}); err == nil {
		t.Fatal("short password accepted")
	}

	if _, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "long enough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Email: "A@B.com", Password: "long enough"}); err == nil {
		t.Fatal("duplicate email accepted")
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "wrong password"}); err == nil {
		t.Fatal("wrong password accepted")
	}
	if _, err := svc.UserFromToken(ctx, "not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
