package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tutormind/tutormind-backend/internal/clients/gcp"
	"github.com/tutormind/tutormind-backend/internal/clients/openai"
	"github.com/tutormind/tutormind-backend/internal/data/repos"
	"github.com/tutormind/tutormind-backend/internal/handlers"
	"github.com/tutormind/tutormind-backend/internal/middleware"
	"github.com/tutormind/tutormind-backend/internal/platform/config"
	"github.com/tutormind/tutormind-backend/internal/platform/db"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/platform/sendgrid"
	"github.com/tutormind/tutormind-backend/internal/realtime"
	"github.com/tutormind/tutormind-backend/internal/realtime/bus"
	"github.com/tutormind/tutormind-backend/internal/server"
	"github.com/tutormind/tutormind-backend/internal/services"
	"github.com/tutormind/tutormind-backend/internal/viz"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Config load failed", "error", err)
	}

	// Telemetry
	telemetryShutdown, err := services.InitTelemetry(log)
	if err != nil {
		log.Warn("Telemetry init failed", "error", err)
		telemetryShutdown = func(context.Context) error { return nil }
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	messageRepo := repos.NewChatMessageRepo(thePG, log)
	turnRepo := repos.NewChatTurnRepo(thePG, log)
	quotaRepo := repos.NewQuotaRepo(thePG, log)
	userEventRepo := repos.NewUserEventRepo(thePG, log)

	// SSE hub and optional cross-instance bus
	log.Info("Setting up SSE hub now...")
	sseHub := realtime.NewSSEHub(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: sseHub}
	if os.Getenv("REDIS_ADDR") != "" {
		sseBus, err := bus.NewRedisBus(log)
		if err != nil {
			log.Warn("Redis bus init failed; staying single-instance", "error", err)
		} else {
			if err := sseBus.StartForwarder(ctx, sseHub.Broadcast); err != nil {
				log.Warn("Redis bus forwarder failed; staying single-instance", "error", err)
			} else {
				emitter = &services.RedisEmitter{Bus: sseBus}
				defer sseBus.Close()
			}
		}
	}

	// Clients
	completionClient, err := openai.New(log)
	if err != nil {
		log.Fatal("OpenAI client init failed", "error", err)
	}
	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		log.Fatal("Bucket init failed", "error", err)
	}
	speechService, err := gcp.NewSpeechService(log)
	if err != nil {
		log.Warn("Speech init failed; voice input disabled", "error", err)
	}
	visionService, err := gcp.NewVisionService(log)
	if err != nil {
		log.Warn("Vision init failed; photo input disabled", "error", err)
	}
	mailClient, err := sendgrid.NewFromEnv(log)
	if err != nil {
		log.Warn("SendGrid init failed; quota emails disabled", "error", err)
	}
	renderer, err := viz.NewRenderer(log)
	if err != nil {
		log.Fatal("Renderer init failed", "error", err)
	}

	// Services
	log.Info("Setting up Services from main...")
	quotaService := services.NewQuotaService(quotaRepo, cfg.Quota.FreeDailyLimit, log)
	synthesizer := services.NewSynthesizer(log)
	gamificationService := services.NewGamificationService(userRepo, userEventRepo, log)
	notifier := services.NewTurnNotifier(emitter, mailClient, log)
	var speechProvider services.SpeechProvider
	if speechService != nil {
		speechProvider = speechService
	}
	var visionProvider services.VisionProvider
	if visionService != nil {
		visionProvider = visionService
	}
	mediaService := services.NewMediaService(bucketService, speechProvider, visionProvider, log)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, log)
	turnService := services.NewTurnService(
		thePG,
		mediaService,
		viz.NewPlanner(viz.DefaultCatalog()),
		quotaService,
		completionClient,
		renderer,
		bucketService,
		synthesizer,
		gamificationService,
		notifier,
		services.TurnRepos{Messages: messageRepo, Turns: turnRepo},
		log,
	)

	// HTTP surface
	authMW := middleware.NewAuthMiddleware(log, authService)
	router := server.NewRouter(cfg, server.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Chat:        handlers.NewChatHandler(turnService, userRepo, messageRepo, log),
		SSE:         handlers.NewSSEHandler(sseHub, log),
		Healthcheck: handlers.NewHealthcheckHandler(thePG),
	}, authMW)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = telemetryShutdown(shutdownCtx)
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}
