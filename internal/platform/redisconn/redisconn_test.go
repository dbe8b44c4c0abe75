package redisconn

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	for _, addr := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		client, err := Connect(ctx, addr)
		require.NoError(t, err, addr)
		require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
		assert.Equal(t, "v", client.Get(ctx, "k").Val())
		require.NoError(t, client.Close())
	}
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, "  ")
	assert.Error(t, err)

	_, err = Connect(ctx, "redis://%zz")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Connect(ctx, addr)
	assert.Error(t, err)
}
