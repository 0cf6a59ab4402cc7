package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicebot-platform/internal/auth"
	"voicebot-platform/internal/calllog"
	"voicebot-platform/internal/config"
	"voicebot-platform/internal/dialog"
	"voicebot-platform/internal/greeting"
	"voicebot-platform/internal/httpapi"
	"voicebot-platform/internal/reporting"
	"voicebot-platform/internal/session"
	"voicebot-platform/internal/telephony"
	"voicebot-platform/internal/webhook"
	"voicebot-platform/pkg/logger"
	"voicebot-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	// Staged-greeting store: redis survives restarts and multiple replicas,
	// memory is fine for a single process.
	var greetings greeting.Store
	switch cfg.Greeting.Store {
	case "redis":
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		greetings, err = greeting.NewRedisStore(rdb, cfg.Greeting.TTL)
		if err != nil {
			log.Error("greeting store init failed", "err", err)
			os.Exit(1)
		}
	default:
		greetings = greeting.NewMemoryStore(cfg.Greeting.TTL)
	}

	// Call disposition log.
	var callLog calllog.Repository
	switch cfg.CallLog.Backend {
	case "postgres":
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		callLog = calllog.NewPostgresRepo(db)
	case "off":
		callLog = calllog.NopRepository{}
	default:
		callLog = calllog.NewMemoryRepo()
	}

	ctrl := dialog.NewController(session.NewStore(), greetings, callLog, dialog.WithLogger(log))
	if ttl := cfg.Call.SessionIdleTTL; ttl > 0 {
		go ctrl.RunReaper(rootCtx, ttl, ttl/2)
	}

	dialer := telephony.NewTwilioDialer(cfg.Twilio)
	if !dialer.Ready() {
		log.Warn("twilio credentials missing, outbound dialing disabled")
	}

	placer := &dialog.CallPlacer{
		Dialer:                dialer,
		Greetings:             greetings,
		BaseURL:               cfg.App.PublicBaseURL,
		DefaultTimeoutSeconds: cfg.Call.TimeoutSeconds,
		DefaultRecord:         cfg.Call.Record,
	}

	webhookHandlers := webhook.Handlers{
		Ctrl: ctrl,
		Params: telephony.DeliveryParams{
			Voice:          cfg.Call.Voice,
			Language:       cfg.Call.Language,
			SpeechTimeout:  cfg.Call.SpeechTimeout,
			SpeechModel:    cfg.Call.SpeechModel,
			SpeechEnhanced: cfg.Call.SpeechEnhanced,
			GatherTimeout:  cfg.Call.GatherTimeout,
			SpeechAction:   "/webhooks/speech",
			VoiceAction:    "/webhooks/voice",
		},
	}

	apiHandlers := httpapi.Handlers{
		Auth:        authManager,
		OperatorKey: cfg.Auth.OperatorKey,
		Ctrl:        ctrl,
		Placer:      placer,
		Dialer:      dialer,
		Reports:     reporting.NewService(callLog),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, webhookHandlers, apiHandlers, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
