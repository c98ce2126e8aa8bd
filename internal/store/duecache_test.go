package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"obtracker/internal/models"
)

func setupDueCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *DueCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewDueCache(client, "obtracker:due", ttl, zap.NewNop())
}

func TestDueCache_UpdateLoad(t *testing.T) {
	_, c := setupDueCache(t, time.Minute)
	ctx := context.Background()

	dueAt := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	entries := []DueEntry{
		{
			PatientID: "m1",
			Room:      "12",
			Name:      "Doe, Jane",
			AlertID:   "a1",
			Label:     "💊 Mag Check",
			AutoType:  models.AutoMagCheck,
			DueAt:     dueAt,
		},
	}

	require.NoError(t, c.Update(ctx, entries))

	loaded, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "m1", loaded[0].PatientID)
	assert.True(t, dueAt.Equal(loaded[0].DueAt))
}

func TestDueCache_EmptyAfterExpiry(t *testing.T) {
	mr, c := setupDueCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Update(ctx, []DueEntry{{PatientID: "m1", AlertID: "a1"}}))

	mr.FastForward(31 * time.Second)

	loaded, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
