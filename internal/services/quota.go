package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

const ErrCodeQuotaExceeded = "quota_exceeded"

// QuotaDecision is the admission result for one turn.
type QuotaDecision struct {
	Allowed bool
	Used    int
	Limit   int
	Code    string
	Message string
}

type QuotaService interface {
	// Admit checks today's counter without mutating it. Premium users are
	// always admitted.
	Admit(ctx context.Context, user *domain.User) (*QuotaDecision, error)
	// Increment bumps the (user, today) counter atomically inside tx.
	// limitJustReached fires only on the exact request whose resulting
	// count equals the limit, and never for unlimited tiers.
	Increment(ctx context.Context, tx *gorm.DB, user *domain.User) (newTotal int, limitJustReached bool, err error)
	Limit() int
}

type quotaService struct {
	log       *logger.Logger
	quotaRepo repos.QuotaRepo
	limit     int
}

func NewQuotaService(quotaRepo repos.QuotaRepo, freeDailyLimit int, log *logger.Logger) QuotaService {
	return &quotaService{
		log:       log.With("service", "QuotaService"),
		quotaRepo: quotaRepo,
		limit:     freeDailyLimit,
	}
}

func (s *quotaService) Limit() int { return s.limit }

func (s *quotaService) Admit(ctx context.Context, user *domain.User) (*QuotaDecision, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, fmt.Errorf("missing user")
	}
	if user.Unlimited() {
		return &QuotaDecision{Allowed: true, Limit: -1}, nil
	}

	rec, err := s.quotaRepo.Get(ctx, nil, user.ID, domain.DayBucketFor(nowUTC()))
	if err != nil {
		return nil, fmt.Errorf("quota lookup: %w", err)
	}
	used := 0
	if rec != nil {
		used = rec.RequestCount
	}
	if used >= s.limit {
		return &QuotaDecision{
			Allowed: false,
			Used:    used,
			Limit:   s.limit,
			Code:    ErrCodeQuotaExceeded,
			Message: fmt.Sprintf("You have used all %d free questions for today. Come back tomorrow or upgrade your plan.", s.limit),
		}, nil
	}
	return &QuotaDecision{Allowed: true, Used: used, Limit: s.limit}, nil
}

func (s *quotaService) Increment(ctx context.Context, tx *gorm.DB, user *domain.User) (int, bool, error) {
	if user == nil || user.ID == uuid.Nil {
		return 0, false, fmt.Errorf("missing user")
	}
	newTotal, err := s.quotaRepo.Increment(ctx, tx, user.ID, domain.DayBucketFor(nowUTC()))
	if err != nil {
		return 0, false, fmt.Errorf("quota increment: %w", err)
	}
	limitJustReached := !user.Unlimited() && newTotal == s.limit
	return newTotal, limitJustReached, nil
}
