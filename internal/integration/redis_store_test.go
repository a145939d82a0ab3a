//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/place-picker/internal/adapter/location"
	"github.com/couchcryptid/place-picker/internal/backend"
	"github.com/couchcryptid/place-picker/internal/catalog"
	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/observability"
	"github.com/couchcryptid/place-picker/internal/picker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(ctx context.Context, t *testing.T) (*backend.RedisStore, *redis.Client) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: startRedis(ctx, t)})
	t.Cleanup(func() { rdb.Close() })
	store := backend.NewRedisStore(rdb, "")
	require.NoError(t, store.CheckReadiness(ctx))
	return store, rdb
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, rdb := newRedisStore(ctx, t)

	places, err := store.UserPlaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, places, "missing key reads as an empty list")

	require.NoError(t, store.ReplaceUserPlaces(ctx, testCatalog[:2]))
	places, err = store.UserPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, testCatalog[:2], places)

	raw, err := rdb.Get(ctx, backend.DefaultRedisKey).Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"p1"`)

	require.NoError(t, store.ReplaceUserPlaces(ctx, nil))
	places, err = store.UserPlaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, places)
}

// TestPickerAgainstRedisBackend runs the catalog loader and the workflow
// against the reference service backed by Redis, then restarts the workflow
// to check that picks survive.
func TestPickerAgainstRedisBackend(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, _ := newRedisStore(ctx, t)
	client := startBackend(t, store)
	metrics := observability.NewMetricsForTesting()

	// Kathmandu: the Himalayas are nearest, the Americas farthest.
	loader := catalog.NewLoader(client, location.NewStatic(domain.GeoCoordinate{Lat: 27.7172, Lon: 85.324}), time.Second, discardLogger(), metrics)
	loader.Start(ctx)
	state, err := loader.Wait(ctx)
	require.NoError(t, err)
	require.Nil(t, state.Err)
	assert.Equal(t, []string{"p3", "p2", "p1"}, domain.IDs(state.Data))

	wf := picker.New(client, discardLogger(), metrics)
	wf.Start(ctx)
	_, err = wf.Wait(ctx)
	require.NoError(t, err)

	require.NoError(t, wf.SelectPlace(ctx, state.Data[0]))
	require.NoError(t, wf.SelectPlace(ctx, state.Data[2]))

	restarted := picker.New(client, discardLogger(), metrics)
	restarted.Start(ctx)
	picks, err := restarted.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, domain.IDs(picks.Data))
}
