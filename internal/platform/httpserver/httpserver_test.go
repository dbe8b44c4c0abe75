package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Defaults(t *testing.T) {
	s := New(Options{Addr: ":0"})

	assert.NotNil(t, s.HTTP.Handler)
	assert.Equal(t, defaultReadHeaderTimeout, s.HTTP.ReadHeaderTimeout)
	assert.Equal(t, defaultReadTimeout, s.HTTP.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, s.HTTP.WriteTimeout)
	assert.Equal(t, defaultIdleTimeout, s.HTTP.IdleTimeout)
}

func TestNew_Overrides(t *testing.T) {
	r := chi.NewRouter()
	s := New(Options{Addr: ":0", Router: r, WriteTimeout: time.Second})

	assert.Equal(t, r, s.HTTP.Handler)
	assert.Equal(t, time.Second, s.HTTP.WriteTimeout)
	assert.Equal(t, defaultReadTimeout, s.HTTP.ReadTimeout)
}

func TestStart_ReturnsNilAfterShutdown(t *testing.T) {
	s := New(Options{Addr: "127.0.0.1:0"})
	done := make(chan error, 1)
	go func() { done <- s.Start(zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
