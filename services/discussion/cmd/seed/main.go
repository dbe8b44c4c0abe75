package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/discussion-platform/internal/platform/db"
	"github.com/example/discussion-platform/internal/platform/logging"
	"github.com/example/discussion-platform/internal/platform/redisconn"
	"github.com/example/discussion-platform/services/discussion/internal/config"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/seed"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/threading"
)

var opts seed.Options

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the discussion store with fake posts, threads and likes",
	Long: `seed writes generated content through the threading engine and like ledger
configured by the usual environment (DATABASE_URL, LEDGER_BACKEND, REDIS_URL).
Without DATABASE_URL it seeds an in-memory store and only prints the totals.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&opts.Posts, "posts", 10, "number of posts")
	f.IntVar(&opts.Comments, "comments", 5, "comments per post")
	f.IntVar(&opts.Replies, "replies", 3, "replies per comment")
	f.IntVar(&opts.Likes, "likes", 100, "total likes across all nodes")
	f.IntVar(&opts.Users, "users", 25, "size of the fake user id pool")
	f.Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.Service(cfg.App.LogLevel, cfg.App.ServiceName, cfg.App.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	var (
		content store.ContentStore = store.NewInMemoryContentStore()
		likes   ledger.Ledger      = ledger.NewInMemoryLedger()
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer pool.Close()
		if err := store.Migrate(ctx, pool, log); err != nil {
			return err
		}
		content = store.NewPostgresContentStore(pool)
		if cfg.LedgerBackend == "" || cfg.LedgerBackend == config.LedgerPostgres {
			likes = ledger.NewPostgresLedger(pool)
		}
	} else {
		log.Warn("DATABASE_URL not set, seeding an in-memory store")
	}
	if cfg.LedgerBackend == config.LedgerRedis {
		rdb, err := redisconn.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		likes = ledger.NewRedisLedger(rdb)
	}

	s := seed.New(threading.New(content, threading.WithLogger(log)), likes, log)
	res, err := s.Run(ctx, opts)
	if err != nil {
		log.Error("seed failed", zap.Error(err))
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
