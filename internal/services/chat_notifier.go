package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/platform/sendgrid"
	"github.com/tutormind/tutormind-backend/internal/realtime"
)

// TurnNotifier pushes ancillary per-user events onto the SSE hub channel and,
// for quota exhaustion, sends a best-effort email. Every method is safe to
// call fire-and-forget; failures are logged and never propagate.
type TurnNotifier interface {
	TurnCompleted(userID uuid.UUID, turnID uuid.UUID, xpAwarded int)
	QuotaLimitReached(userID uuid.UUID, email string, used int, limit int)
}

type turnNotifier struct {
	log  *logger.Logger
	emit SSEEmitter
	mail sendgrid.Client
}

// NewTurnNotifier builds the notifier; mail may be nil when SendGrid is not
// configured, in which case only SSE events go out.
func NewTurnNotifier(emit SSEEmitter, mail sendgrid.Client, log *logger.Logger) TurnNotifier {
	return &turnNotifier{
		log:  log.With("service", "TurnNotifier"),
		emit: emit,
		mail: mail,
	}
}

func (n *turnNotifier) TurnCompleted(userID uuid.UUID, turnID uuid.UUID, xpAwarded int) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventTurnCompleted,
		Data: map[string]any{
			"turn_id":    turnID,
			"xp_awarded": xpAwarded,
		},
	})
	if xpAwarded > 0 {
		n.emit.Emit(context.Background(), realtime.SSEMessage{
			Channel: realtime.UserChannel(userID),
			Event:   realtime.SSEEventXPAwarded,
			Data:    map[string]any{"xp_awarded": xpAwarded},
		})
	}
}

func (n *turnNotifier) QuotaLimitReached(userID uuid.UUID, email string, used int, limit int) {
	if n == nil || userID == uuid.Nil {
		return
	}
	if n.emit != nil {
		n.emit.Emit(context.Background(), realtime.SSEMessage{
			Channel: realtime.UserChannel(userID),
			Event:   realtime.SSEEventQuotaLimitReached,
			Data:    map[string]any{"used": used, "limit": limit},
		})
	}
	if n.mail == nil || email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := n.mail.Send(ctx, sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: email}},
		Subject: "You reached your daily question limit",
		Text: fmt.Sprintf(
			"You asked %d questions today and reached the free daily limit of %d. The counter resets at midnight UTC.",
			used, limit,
		),
	})
	if err != nil {
		n.log.Warn("quota email failed", "user_id", userID, "error", err)
	}
}
