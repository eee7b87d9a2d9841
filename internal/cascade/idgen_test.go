package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/geolog-mcp/pkg/types"
)

func noneExist(context.Context, string) (bool, error) { return false, nil }

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxRetries: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestIDFormat(t *testing.T) {
	g, err := NewIDGenerator(fastRetry(3), 0)
	require.NoError(t, err)

	for _, prefix := range []Prefix{PrefixSample, PrefixPiezometer, PrefixWater} {
		id, err := g.Next(context.Background(), prefix, noneExist)
		require.NoError(t, err)
		assert.Regexp(t, `^`+string(prefix)+`-[0-9A-Z]{6}$`, id)
	}
}

func TestIDFromFrozenClock(t *testing.T) {
	g, err := NewIDGenerator(fastRetry(3), 16)
	require.NoError(t, err)
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	id, err := g.Next(context.Background(), PrefixSample, noneExist)
	require.NoError(t, err)
	assert.Equal(t, "SAMP-YW3V28", id)

	// other prefixes do not collide with the same clock value
	id, err = g.Next(context.Background(), PrefixSoil, noneExist)
	require.NoError(t, err)
	assert.Equal(t, "SOIL-YW3V28", id)
}

func TestIDExhaustion(t *testing.T) {
	g, err := NewIDGenerator(fastRetry(4), 16)
	require.NoError(t, err)
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	var collisions int
	g.onCollision = func(Prefix) { collisions++ }

	calls := 0
	taken := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}
	_, err = g.Next(context.Background(), PrefixHydraulic, taken)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIdGenerationExhausted)
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, collisions)
}

func TestIDIssuedAreNotReused(t *testing.T) {
	g, err := NewIDGenerator(fastRetry(2), 16)
	require.NoError(t, err)
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	_, err = g.Next(context.Background(), PrefixCore, noneExist)
	require.NoError(t, err)

	// the store is empty but this process already handed the value out
	_, err = g.Next(context.Background(), PrefixCore, noneExist)
	assert.ErrorIs(t, err, types.ErrIdGenerationExhausted)
}

func TestIDAdvancingClock(t *testing.T) {
	g, err := NewIDGenerator(fastRetry(3), 16)
	require.NoError(t, err)
	ms := int64(1700000000000)
	g.now = func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}

	seen := map[string]bool{}
	taken := func(_ context.Context, id string) (bool, error) {
		// the first candidate is already stored
		if len(seen) == 0 {
			seen[id] = true
			return true, nil
		}
		return false, nil
	}
	id, err := g.Next(context.Background(), PrefixMethod, taken)
	require.NoError(t, err)
	assert.NotContains(t, seen, id)
}

func TestIDLookupErrorPropagates(t *testing.T) {
	g, err := NewIDGenerator(fastRetry(5), 16)
	require.NoError(t, err)

	boom := errors.New("disk I/O error")
	calls := 0
	_, err = g.Next(context.Background(), PrefixCore, func(context.Context, string) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, types.ErrIdGenerationExhausted)
	assert.Equal(t, 1, calls)
}

func TestNewIDGeneratorRejectsZeroAttempts(t *testing.T) {
	_, err := NewIDGenerator(RetryConfig{}, 0)
	assert.Error(t, err)
}
