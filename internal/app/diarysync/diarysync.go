// Package diarysync собирает приложение синхронизации дневника.
package diarysync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/diary-sync/internal/config"
	"github.com/magabrotheeeer/diary-sync/internal/jobs"
	"github.com/magabrotheeeer/diary-sync/internal/lib/jwt"
	"github.com/magabrotheeeer/diary-sync/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
	"github.com/magabrotheeeer/diary-sync/internal/migrations"
	"github.com/magabrotheeeer/diary-sync/internal/portal"
	"github.com/magabrotheeeer/diary-sync/internal/reconciler"
	"github.com/magabrotheeeer/diary-sync/internal/services/appversion"
	"github.com/magabrotheeeer/diary-sync/internal/services/journal"
	"github.com/magabrotheeeer/diary-sync/internal/services/schedule"
	"github.com/magabrotheeeer/diary-sync/internal/services/subjects"
	"github.com/magabrotheeeer/diary-sync/internal/storage/cache"
	"github.com/magabrotheeeer/diary-sync/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	scheduler *jobs.Scheduler
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	amqpConn  *amqp.Connection
	amqpCh    *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.diarysync.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	publisher := rabbitmq.NewPublisher(ch)

	client := portal.NewHTTPClient(cfg.Portal.Timeout)
	sessions := portal.NewSessionManager(cfg.Portal, client, cfg.Portal, cache.NewSessionStore(cacheRedis), logger)
	fetcher, err := portal.NewFetcher(cfg.Portal, client, sessions, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pages := portal.NewPages(cfg.Portal)
	mapper := reconciler.NewMapper(db, reconciler.ParseBatchPolicy(cfg.Sync.BatchPolicy), cfg.Sync.LessonDuration, logger)

	services := Services{
		Schedule:   schedule.New(fetcher, pages, mapper, db, publisher, cfg.Sync.LookaheadDays, logger),
		Subjects:   subjects.New(fetcher, pages, mapper, db, logger),
		Journal:    journal.New(fetcher, pages, mapper, db, cfg.Sync.GradeBackfillDays, cfg.Sync.LookaheadDays, logger),
		AppVersion: appversion.New(&http.Client{Timeout: cfg.Jobs.AppVersionTimeout}, cfg.Update.ManifestURL, cfg.Version, publisher, logger),
	}

	statuses := cache.NewStatusStore(cacheRedis)
	runner := jobs.NewRunner(jobs.NewMetrics(prometheus.DefaultRegisterer), statuses, logger)
	scheduler := jobs.NewScheduler(runner, logger,
		jobs.WithRetry(cfg.Jobs.MaxRetries, cfg.Jobs.RetryInitialDelay, cfg.Jobs.RetryMaxDelay),
	)
	for _, f := range Families(cfg.Jobs, services) {
		if err := scheduler.Register(f); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			_ = cacheRedis.Close()
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Version:   cfg.Version,
		Tokens:    jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Scheduler: scheduler,
		Statuses:  statuses,
		DB:        db,
		Cache:     cacheRedis,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		scheduler: scheduler,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		amqpConn:  conn,
		amqpCh:    ch,
	}, nil
}

// Run запускает планировщик и HTTP-сервер и блокирует до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("app.diarysync.Run: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}

	a.scheduler.Stop()
	a.close()
	return runErr
}

func (a *App) close() {
	if err := a.amqpCh.Close(); err != nil {
		a.logger.Warn("failed to close amqp channel", sl.Err(err))
	}
	if err := a.amqpConn.Close(); err != nil {
		a.logger.Warn("failed to close amqp connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close postgres", sl.Err(err))
	}
}
