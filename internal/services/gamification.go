package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

const XPPerTurn = 10

type GamificationService interface {
	// AwardTurnXP records the turn-completed event and bumps the user's XP
	// counter, inside the caller's transaction.
	AwardTurnXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int, error)
}

type gamificationService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	eventRepo repos.UserEventRepo
}

func NewGamificationService(userRepo repos.UserRepo, eventRepo repos.UserEventRepo, log *logger.Logger) GamificationService {
	return &gamificationService{
		log:       log.With("service", "GamificationService"),
		userRepo:  userRepo,
		eventRepo: eventRepo,
	}
}

func (s *gamificationService) AwardTurnXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("missing user id")
	}
	now := time.Now().UTC()
	event := &domain.UserEvent{
		ID:        uuid.New(),
		UserID:    userID,
		EventType: domain.EventTypeTurnCompleted,
		XPAwarded: XPPerTurn,
		CreatedAt: now,
	}
	if err := s.eventRepo.Create(ctx, tx, event); err != nil {
		return 0, fmt.Errorf("create user event: %w", err)
	}
	if err := s.userRepo.AddXP(ctx, tx, userID, XPPerTurn); err != nil {
		return 0, fmt.Errorf("bump user xp: %w", err)
	}
	return XPPerTurn, nil
}
