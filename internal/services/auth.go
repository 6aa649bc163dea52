package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/utils"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	UserFromToken(ctx context.Context, tokenString string) (*domain.User, error)
}

type authService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repos.UserRepo, jwtSecret string, tokenTTLSeconds int, log *logger.Logger) AuthService {
	return &authService{
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  time.Duration(tokenTTLSeconds) * time.Second,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	exists, err := s.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PlanTier:     domain.PlanTierFree,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("invalid email or password")
	}
	return s.issue(user)
}

func (s *authService) UserFromToken(ctx context.Context, tokenString string) (*domain.User, error) {
	userID, err := utils.ParseAccessToken(s.jwtSecret, tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("unknown user")
	}
	return user, nil
}

func (s *authService) issue(user *domain.User) (*AuthResult, error) {
	token, err := utils.SignAccessToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}
