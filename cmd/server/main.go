package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/database"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/logger"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/repository"
	"github.com/stemsi/exstem-quiz/internal/router"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/validator"
	"github.com/stemsi/exstem-quiz/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem Quiz")

	// ─── Translations and Validator ────────────────────────────────────
	tr, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}
	if err := validator.Setup(tr); err != nil {
		log.Fatal().Err(err).Msg("Failed to register validator translations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Repositories and Services ─────────────────────────────────────
	quizRepo := repository.NewQuizRepository(pool)
	resultRepo := repository.NewQuizResultRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)

	authService := service.NewAuthService(cfg)
	quizService := service.NewQuizService(quizRepo, resultRepo, service.NewRedisQuizCache(rdb), tr, log)
	referenceService := service.NewReferenceService(referenceRepo, log)
	attemptService := service.NewAttemptService(
		quizService,
		service.NewRedisAttemptStore(rdb, cfg.AttemptTTL),
		service.NewRedisResultQueue(rdb),
		log,
	)

	// Load active quizzes into Redis before accepting traffic.
	if err := quizService.PrewarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Handlers and Router ───────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(),
		Quiz:      handler.NewQuizHandler(quizService, log),
		Attempt:   handler.NewAttemptHandler(quizService, attemptService, log),
		Reference: handler.NewReferenceHandler(referenceService, log),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}, log),
	}

	limiter := middleware.NewRateLimiter(cfg.AttemptRateBurst, cfg.AttemptRateWindow)
	r := router.SetupRouter(authService, tr, limiter, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Run ───────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	resultWorker := worker.NewResultWorker(worker.NewRedisQueue(rdb), resultRepo, log)
	g.Go(func() error {
		resultWorker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		limiter.Cleanup(gctx.Done(), 10*time.Minute)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
