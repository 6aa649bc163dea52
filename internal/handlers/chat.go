package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/domain"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/realtime"
	"github.com/tutormind/tutormind-backend/internal/requestdata"
	"github.com/tutormind/tutormind-backend/internal/services"
	"github.com/tutormind/tutormind-backend/internal/utils"
)

type ChatHandler struct {
	log         *logger.Logger
	turnService services.TurnService
	userRepo    repos.UserRepo
	messageRepo repos.ChatMessageRepo
}

func NewChatHandler(turnService services.TurnService, userRepo repos.UserRepo, messageRepo repos.ChatMessageRepo, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		log:         log.With("handler", "ChatHandler"),
		turnService: turnService,
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// SubmitTurn runs one turn and streams its events back on the response body.
// The request must carry at least one of text, photo_ref, audio_ref.
func (ch *ChatHandler) SubmitTurn(c *gin.Context) {
	var req services.SubmitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c, ch.userRepo)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	stream, err := realtime.NewTurnStream(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}
	ch.turnService.SubmitTurn(c.Request.Context(), user, req, stream)
}

// History lists the authenticated user's messages, oldest first.
func (ch *ChatHandler) History(c *gin.Context) {
	user := currentUser(c, ch.userRepo)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	limit := utils.ClampInt(c.DefaultQuery("limit", "50"), 1, 200, 50)
	messages, err := ch.messageRepo.ListByUser(c.Request.Context(), nil, user.ID, limit)
	if err != nil {
		ch.log.Error("history lookup failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// currentUser prefers the middleware-cached user and falls back to a lookup
// by the request identity.
func currentUser(c *gin.Context, userRepo repos.UserRepo) *domain.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(*domain.User); ok && u != nil {
			return u
		}
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return nil
	}
	u, err := userRepo.GetByID(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		return nil
	}
	return u
}
