package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/realtime"
	"github.com/tutormind/tutormind-backend/internal/requestdata"
)

type SSEHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewSSEHandler(hub *realtime.SSEHub, log *logger.Logger) *SSEHandler {
	return &SSEHandler{log: log.With("handler", "SSEHandler"), hub: hub}
}

// Subscribe attaches the caller to their personal ancillary event channel
// (turn-completed, XP, quota notices).
func (sh *SSEHandler) Subscribe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	client := sh.hub.NewSSEClient(rd.UserID)
	sh.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	defer sh.hub.CloseClient(client)

	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
