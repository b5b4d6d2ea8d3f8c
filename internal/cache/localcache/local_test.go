package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetRemove(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := c.GetString(ctx, "categories")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetString(ctx, "categories", `[{"id":1}]`))
	v, ok, err := c.GetString(ctx, "categories")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, v)

	require.NoError(t, c.Remove(ctx, "categories"))
	_, ok, _ = c.GetString(ctx, "categories")
	assert.False(t, ok)

	// Removing an absent key is not an error.
	assert.NoError(t, c.Remove(ctx, "categories"))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	err := Config{Capacity: 0, NumShards: 1, TTL: time.Minute, EvictionPercentage: 10}.Validate()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Capacity", cfgErr.Field)

	_, err = New(Config{Capacity: 10, NumShards: 1, TTL: 0, EvictionPercentage: 10})
	assert.Error(t, err)
}
