package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tutormind/tutormind-backend/internal/handlers"
	"github.com/tutormind/tutormind-backend/internal/middleware"
	"github.com/tutormind/tutormind-backend/internal/platform/config"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Chat        *handlers.ChatHandler
	SSE         *handlers.SSEHandler
	Healthcheck *handlers.HealthcheckHandler
}

func NewRouter(cfg *config.Config, h Handlers, authMW *middleware.AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("tutormind-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", h.Healthcheck.Healthcheck)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		protected := api.Group("")
		protected.Use(authMW.RequireAuth())
		{
			protected.POST("/chat/turns", h.Chat.SubmitTurn)
			protected.GET("/chat/messages", h.Chat.History)
			protected.GET("/events", h.SSE.Subscribe)
		}
	}

	return router
}
