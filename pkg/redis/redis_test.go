package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNew(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := Config{URL: "redis://" + mr.Addr() + "/0", ReadTimeout: 1, WriteTimeout: 1, DialTimeout: 1, PoolSize: 2}
	client, err := cfg.New(context.Background())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 2, client.Options().PoolSize)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", client.Get(context.Background(), "k").Val())
}

func TestConfigNew_Errors(t *testing.T) {
	_, err := (&Config{}).New(context.Background())
	assert.Error(t, err)

	_, err = (&Config{URL: "not a url"}).New(context.Background())
	assert.Error(t, err)

	_, err = (&Config{URL: "redis://127.0.0.1:1/0", DialTimeout: 1}).New(context.Background())
	assert.Error(t, err)
}
