// Package config holds the discussion service settings layered on top of the
// shared platform config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	platformconfig "github.com/example/discussion-platform/internal/platform/config"
)

// Ledger backends accepted by LEDGER_BACKEND.
const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
	LedgerRedis    = "redis"
)

type Config struct {
	App platformconfig.AppConfig

	DatabaseURL string
	DBMaxConns  int32
	RedisURL    string
	NATSURL     string
	GRPCAddr    string
	// LedgerBackend is empty when LEDGER_BACKEND is unset: likes then follow
	// the content store backend.
	LedgerBackend string

	CBMaxRequests      uint32
	CBInterval         time.Duration
	CBTimeout          time.Duration
	CBFailureThreshold uint32
}

func Load() (Config, error) {
	v, err := platformconfig.NewViper()
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	app, err := platformconfig.FromViper(v)
	if err != nil {
		return Config{}, err
	}

	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("CB_MAX_REQUESTS", 1)
	v.SetDefault("CB_INTERVAL", "60s")
	v.SetDefault("CB_TIMEOUT", "30s")
	v.SetDefault("CB_FAILURE_THRESHOLD", 5)

	cfg := Config{
		App:                app,
		DatabaseURL:        strings.TrimSpace(v.GetString("DATABASE_URL")),
		DBMaxConns:         v.GetInt32("DB_MAX_CONNS"),
		RedisURL:           strings.TrimSpace(v.GetString("REDIS_URL")),
		NATSURL:            strings.TrimSpace(v.GetString("NATS_URL")),
		GRPCAddr:           strings.TrimSpace(v.GetString("GRPC_ADDR")),
		LedgerBackend:      strings.ToLower(strings.TrimSpace(v.GetString("LEDGER_BACKEND"))),
		CBMaxRequests:      v.GetUint32("CB_MAX_REQUESTS"),
		CBInterval:         v.GetDuration("CB_INTERVAL"),
		CBTimeout:          v.GetDuration("CB_TIMEOUT"),
		CBFailureThreshold: v.GetUint32("CB_FAILURE_THRESHOLD"),
	}

	switch cfg.LedgerBackend {
	case "", LedgerMemory, LedgerPostgres:
	case LedgerRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when LEDGER_BACKEND=%s", LedgerRedis)
		}
	default:
		return Config{}, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}
	return cfg, nil
}
