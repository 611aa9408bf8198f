package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	activityhandler "trustmatrix/internal/activity/handler"
	activityservice "trustmatrix/internal/activity/service"
	activitystore "trustmatrix/internal/activity/store"
	"trustmatrix/internal/notify"
	"trustmatrix/internal/platform/config"
	"trustmatrix/internal/platform/httpserver"
	"trustmatrix/internal/platform/kafka"
	"trustmatrix/internal/platform/logger"
	"trustmatrix/internal/platform/metrics"
	"trustmatrix/internal/platform/postgres"
	"trustmatrix/internal/platform/redis"
	"trustmatrix/internal/platform/telemetry"
	verificationhandler "trustmatrix/internal/verification/handler"
	verificationmetrics "trustmatrix/internal/verification/metrics"
	"trustmatrix/internal/verification/ports"
	"trustmatrix/internal/verification/scheduler"
	verificationservice "trustmatrix/internal/verification/service"
	userstore "trustmatrix/internal/verification/store/user"
	"trustmatrix/pkg/platform/httputil"
	"trustmatrix/pkg/platform/middleware/auth"
	"trustmatrix/pkg/platform/middleware/ratelimit"
	"trustmatrix/pkg/platform/middleware/requestid"
	"trustmatrix/pkg/platform/middleware/requesttime"
)

// activityStore is what the activity service writes to and the verification
// service counts evidence from.
type activityStore interface {
	activityservice.Store
	ports.RecordStore
}

type stores struct {
	db       *sqlx.DB
	users    ports.UserStore
	tx       ports.UserTx
	activity activityStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies, serves until ctx is cancelled, then drains the
// background workers.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	shutdownTelemetry, err := telemetry.SetupOTelSDK(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		// Runs after the HTTP server and workers stop so their last spans flush.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	kafkaClient, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
	}

	dispatcher := notify.NewDispatcher(buildSink(cfg, log, redisClient, kafkaClient),
		notify.WithLogger(log),
		notify.WithMetrics(notify.NewMetrics(reg)),
		notify.WithQueueSize(cfg.Notify.QueueSize),
		notify.WithTimeout(cfg.Notify.Timeout),
	)

	verification, err := verificationservice.New(st.users, st.tx, st.activity,
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(verificationmetrics.New(reg)),
		verificationservice.WithNotifier(dispatcher),
		verificationservice.WithStoreTimeout(cfg.Verification.StoreTimeout),
		verificationservice.WithBcryptCost(cfg.Verification.BcryptCost),
	)
	if err != nil {
		return fmt.Errorf("create verification service: %w", err)
	}
	activity, err := activityservice.New(st.activity, st.users, verification,
		activityservice.WithLogger(log),
		activityservice.WithMetrics(activityservice.NewMetrics(reg)),
		activityservice.WithStoreTimeout(cfg.Verification.StoreTimeout),
	)
	if err != nil {
		return fmt.Errorf("create activity service: %w", err)
	}

	limiter, stopLimiter := ratelimit.New(cfg.RateLimit.RefillPerSecond, cfg.RateLimit.Burst)
	defer stopLimiter()

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(httpMetrics.Middleware)

	r.Handle("/metrics", httpMetrics.Handler())
	r.Get("/healthz", healthHandler(st.db, redisClient, log))

	jwtService := auth.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtService, log))
		r.Use(ratelimit.Middleware(limiter, ratelimit.UserOrIPKey, log))
		verificationhandler.New(verification, log).Register(r)
		activityhandler.New(activity, log).Register(r)
	})

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var workers errgroup.Group
	// The dispatcher outlives the signal so Close can drain the backlog.
	workers.Go(func() error {
		return dispatcher.Run(context.WithoutCancel(workersCtx))
	})
	if cfg.Scheduler.Enabled {
		sweeper := scheduler.New(st.users, verification,
			scheduler.WithLogger(log),
			scheduler.WithInterval(cfg.Scheduler.Interval),
			scheduler.WithConcurrency(cfg.Scheduler.Concurrency),
		)
		workers.Go(func() error {
			return ignoreCancel(sweeper.Run(workersCtx))
		})
	}

	srv := httpserver.New(cfg.Server.Addr, otelhttp.NewHandler(r, "http.server"))
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting trustmatrix", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	stopWorkers()
	dispatcher.Close()
	return workers.Wait()
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Database.URL == "" {
		log.Info("no database configured, using in-memory stores")
		users := userstore.New()
		return &stores{
			users:    users,
			tx:       userstore.NewShardedTx(users, cfg.Verification.TxTimeout),
			activity: activitystore.NewInMemory(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &stores{
		db:       db,
		users:    userstore.NewPostgres(db.DB),
		tx:       userstore.NewPostgresTx(db.DB, cfg.Verification.TxTimeout),
		activity: activitystore.NewPostgres(db),
	}, nil
}

// buildSink fans out to every configured broker. The log sink is always
// present so upgrades are visible without one.
func buildSink(cfg config.Config, log *slog.Logger, redisClient *redis.Client, kafkaClient *kgo.Client) notify.Sink {
	sinks := notify.FanoutSink{notify.NewLogSink(log)}
	if redisClient != nil {
		sinks = append(sinks, notify.NewRedisStreamSink(redisClient.Client, cfg.Redis.Stream))
	}
	if kafkaClient != nil {
		sinks = append(sinks, notify.NewKafkaSink(kafkaClient, cfg.Kafka.Topic))
	}
	return sinks
}

func healthHandler(db *sqlx.DB, redisClient *redis.Client, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				log.WarnContext(ctx, "database health check failed", "error", err)
				status["database"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				log.WarnContext(ctx, "redis health check failed", "error", err)
				status["redis"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		if code != http.StatusOK {
			status["status"] = "degraded"
		}
		httputil.WriteJSON(w, code, status)
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
