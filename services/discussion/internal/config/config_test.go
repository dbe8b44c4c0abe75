package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("SERVICE_NAME", "discussion")
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, "discussion", cfg.App.ServiceName)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Empty(t, cfg.LedgerBackend)
	assert.Equal(t, uint32(1), cfg.CBMaxRequests)
	assert.Equal(t, 60*time.Second, cfg.CBInterval)
	assert.Equal(t, 30*time.Second, cfg.CBTimeout)
	assert.Equal(t, uint32(5), cfg.CBFailureThreshold)
}

func TestFromViper_Overrides(t *testing.T) {
	v := baseViper()
	v.Set("DATABASE_URL", " postgres://localhost/discussion ")
	v.Set("REDIS_URL", "redis://localhost:6379/1")
	v.Set("LEDGER_BACKEND", "Redis")
	v.Set("CB_TIMEOUT", "5s")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/discussion", cfg.DatabaseURL)
	assert.Equal(t, LedgerRedis, cfg.LedgerBackend)
	assert.Equal(t, 5*time.Second, cfg.CBTimeout)
}

func TestFromViper_LedgerBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		redis   string
		wantErr bool
	}{
		{"memory", "memory", "", false},
		{"postgres", "postgres", "", false},
		{"redis with url", "redis", "localhost:6379", false},
		{"redis without url", "redis", "", true},
		{"unknown", "mongo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseViper()
			v.Set("LEDGER_BACKEND", tt.backend)
			if tt.redis != "" {
				v.Set("REDIS_URL", tt.redis)
			}
			_, err := FromViper(v)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromViper_RequiresServiceName(t *testing.T) {
	_, err := FromViper(viper.New())
	assert.Error(t, err)
}
