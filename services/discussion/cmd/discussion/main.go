package main

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/example/discussion-platform/internal/platform/db"
	"github.com/example/discussion-platform/internal/platform/httpserver"
	"github.com/example/discussion-platform/internal/platform/logging"
	"github.com/example/discussion-platform/internal/platform/natsconn"
	"github.com/example/discussion-platform/internal/platform/redisconn"
	"github.com/example/discussion-platform/internal/platform/run"
	"github.com/example/discussion-platform/services/discussion/internal/aggregate"
	"github.com/example/discussion-platform/services/discussion/internal/config"
	"github.com/example/discussion-platform/services/discussion/internal/events"
	"github.com/example/discussion-platform/services/discussion/internal/grpcapi"
	"github.com/example/discussion-platform/services/discussion/internal/handlers"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/threading"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.Service(cfg.App.LogLevel, cfg.App.ServiceName, cfg.App.Env)
	if err != nil {
		panic(err)
	}
	var cleanup run.Cleanup
	pool := initPostgres(cfg, log, &cleanup)
	if pool != nil {
		cleanup.Add(pool.Close)
	}

	var content store.ContentStore = store.NewInMemoryContentStore()
	if pool != nil {
		content = store.NewPostgresContentStore(pool)
		log.Info("content store: postgres")
	} else {
		log.Warn("content store: in-memory (development only)")
	}

	likes, closeLikes := initLedger(cfg, pool, log, &cleanup)
	cleanup.Add(closeLikes)

	publisher, closeEvents := initEvents(cfg, log)
	cleanup.Add(closeEvents)

	observed := ledger.WithObserver(likes, publisher)
	engine := threading.New(content,
		threading.WithNotifier(publisher),
		threading.WithLogger(log),
	)
	views := aggregate.New(content, observed)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		Logger: log,
		ReadyFunc: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return errors.Join(content.Ping(ctx), observed.Ping(ctx))
		},
	})
	handlers.Mount(r, handlers.Deps{Engine: engine, Likes: observed, Views: views, Log: log})

	srv := httpserver.New(httpserver.Options{Addr: cfg.App.HTTP.Addr, Router: r})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		cleanup.Run()
		_ = log.Sync()
		run.Exit(1)
	}
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcapi.UnaryRequestID()))
	grpcapi.RegisterEngagementServer(grpcSrv, &grpcapi.EngagementService{Likes: observed, Views: views, Log: log})
	go func() {
		log.Info("grpc server starting", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	code := runner.WithSignals(func(context.Context) error {
		return srv.Start(log)
	}, stopGRPC(grpcSrv), srv.Shutdown)

	cleanup.Run()
	log.Info("exit", zap.Int("code", code))
	_ = log.Sync()
	run.Exit(code)
}

// stopGRPC drains in-flight RPCs and forces the server closed when ctx expires.
func stopGRPC(s *grpc.Server) func(context.Context) error {
	return func(ctx context.Context) error {
		stopped := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			return nil
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		}
	}
}

// fatalInProd stops the process in production and otherwise logs a fallback warning.
func fatalInProd(cfg config.Config, log *zap.Logger, cleanup *run.Cleanup, msg string, err error) {
	if cfg.App.IsProduction() {
		log.Error(msg+" (required in production)", zap.Error(err))
		cleanup.Run()
		_ = log.Sync()
		run.Exit(1)
	}
	log.Warn(msg+", falling back to in-memory storage", zap.Error(err))
}

// initPostgres opens and migrates the database. It returns nil when
// DATABASE_URL is unset or unreachable outside production.
func initPostgres(cfg config.Config, log *zap.Logger, cleanup *run.Cleanup) *pgxpool.Pool {
	if cfg.DatabaseURL == "" {
		fatalInProd(cfg, log, cleanup, "DATABASE_URL not set", nil)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		fatalInProd(cfg, log, cleanup, "postgres unavailable", err)
		return nil
	}
	if err := store.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		fatalInProd(cfg, log, cleanup, "postgres migration failed", err)
		return nil
	}
	return pool
}

// initLedger picks the like ledger. Without LEDGER_BACKEND it follows the
// content store: postgres when a pool is open, memory otherwise.
func initLedger(cfg config.Config, pool *pgxpool.Pool, log *zap.Logger, cleanup *run.Cleanup) (ledger.Ledger, func()) {
	backend := cfg.LedgerBackend
	if backend == "" {
		backend = config.LedgerMemory
		if pool != nil {
			backend = config.LedgerPostgres
		}
	}

	switch backend {
	case config.LedgerPostgres:
		if pool == nil {
			fatalInProd(cfg, log, cleanup, "postgres ledger requested without a database", nil)
			return ledger.NewInMemoryLedger(), nil
		}
		log.Info("like ledger: postgres")
		return ledger.NewPostgresLedger(pool), nil
	case config.LedgerRedis:
		rdb, err := redisconn.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			fatalInProd(cfg, log, cleanup, "redis unavailable", err)
			return ledger.NewInMemoryLedger(), nil
		}
		log.Info("like ledger: redis")
		return ledger.NewRedisLedger(rdb), func() { _ = rdb.Close() }
	default:
		log.Info("like ledger: in-memory")
		return ledger.NewInMemoryLedger(), nil
	}
}

// initEvents connects to JetStream. Events are optional: any failure yields a
// publisher that drops everything.
func initEvents(cfg config.Config, log *zap.Logger) (*events.Publisher, func()) {
	if cfg.NATSURL == "" {
		log.Info("NATS_URL not set, domain events disabled")
		return events.New(nil), nil
	}

	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.App.ServiceName})
	if err != nil {
		log.Warn("nats connect failed, domain events disabled", zap.Error(err))
		return events.New(nil), nil
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		log.Warn("jetstream unavailable, domain events disabled", zap.Error(err))
		return events.New(nil), nil
	}
	if err := events.EnsureStream(js); err != nil {
		log.Warn("ensure stream failed", zap.String("stream", events.StreamName), zap.Error(err))
	}

	cb := events.NewBreaker(events.BreakerConfig{
		MaxRequests:      cfg.CBMaxRequests,
		Interval:         cfg.CBInterval,
		Timeout:          cfg.CBTimeout,
		FailureThreshold: cfg.CBFailureThreshold,
	}, log)
	log.Info("domain events: nats jetstream", zap.String("url", cfg.NATSURL))
	return events.New(js, events.WithCircuitBreaker(cb), events.WithLogger(log)), func() {
		_ = nc.Drain()
	}
}
