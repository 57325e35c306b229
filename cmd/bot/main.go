package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/config"
	"github.com/aliskhannn/knowledge-check-bot/internal/delivery/telegram"
	"github.com/aliskhannn/knowledge-check-bot/internal/infra/api"
	"github.com/aliskhannn/knowledge-check-bot/internal/infra/postgres"
	"github.com/aliskhannn/knowledge-check-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/knowledge-check-bot/internal/infra/redis"
	"github.com/aliskhannn/knowledge-check-bot/internal/logger"
	"github.com/aliskhannn/knowledge-check-bot/internal/service"
	"github.com/aliskhannn/knowledge-check-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	l, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("bot stopped with error", zap.Error(err))
		return
	}

	l.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	// Initialize repositories and services.
	userRepo := repository.NewUserRepository(pool)

	var sessionRepo service.SessionRepository
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		sessionRepo = redis.NewSessionRepository(rdb)
	default:
		sessionRepo = repository.NewSessionRepository(pool)
	}
	logger.Info("session store selected", zap.String("store", cfg.Session.Store))

	client := api.NewClient(api.Config{
		RequestTimeout: cfg.API.RequestTimeout,
		InitialDelay:   cfg.API.InitialDelay,
		MaxDelay:       cfg.API.MaxDelay,
	}, logger)

	userService := service.NewUserService(userRepo)
	sessionService := service.NewSessionService(sessionRepo, logger)
	questionService := service.NewQuestionService(client, cfg.API.BaseURL, logger)
	quizService := service.NewQuizService(questionService, storage.NewQuizStorage(), cfg.Quiz.TTL, logger)

	go func() {
		if err := quizService.StartCleanup(ctx, cfg.Quiz.CleanupSchedule); err != nil {
			logger.Error("quiz cleanup failed", zap.Error(err))
		}
	}()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr, logger)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Env != config.EnvProduction

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "video", Description: "Choose a video (usage: /video <id>)"},
		{Command: "quiz", Description: "Start the knowledge check"},
		{Command: "stop", Description: "Stop the knowledge check"},
		{Command: "help", Description: "Help"},
	}

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		logger.Warn("failed to set bot commands", zap.Error(err))
	}

	logger.Info("authorized on account",
		zap.String("username", bot.Self.UserName),
		zap.String("api_base_url", cfg.API.BaseURL),
	)

	handler := telegram.NewHandler(bot, logger, userService, sessionService, quizService)

	return handler.Run(ctx)
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
