// internal/assignment/cache_test.go
package assignment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/geo"
	"territory-workers/internal/models"
)

func newTestCache(t *testing.T) (*CoordinateCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCoordinateCache(client, time.Hour, logger.NewTestLogger(t)), mr
}

func TestCoordinateCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	addr := geo.Address{City: "Sorocaba", State: "SP", PostalCode: "18030-310"}
	point := geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526}

	assert.Nil(t, cache.Get(ctx, addr))

	cache.Set(ctx, addr, point, models.CoordinateSourceGeocoder)
	cached := cache.Get(ctx, addr)
	require.NotNil(t, cached)
	assert.Equal(t, point, cached.Point)
	assert.Equal(t, models.CoordinateSourceGeocoder, cached.Source)
}

func TestCoordinateCacheKeyNormalization(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	point := geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526}

	cache.Set(ctx, geo.Address{City: "São Paulo"}, point, models.CoordinateSourceCity)

	// Accents and casing must not cause a second cache entry.
	cached := cache.Get(ctx, geo.Address{City: "SAO PAULO"})
	require.NotNil(t, cached)
	assert.Equal(t, point, cached.Point)
}

func TestCoordinateCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	addr := geo.Address{City: "Campinas"}

	cache.Set(ctx, addr, geo.GeoPoint{Latitude: -22.9099, Longitude: -47.0626}, models.CoordinateSourceCity)
	mr.FastForward(2 * time.Hour)
	assert.Nil(t, cache.Get(ctx, addr))
}

func TestCoordinateCacheCorruptedValue(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	addr := geo.Address{City: "Santos"}

	require.NoError(t, mr.Set("geo:coord:"+geo.Normalize(addr.QueryString()), "not-json"))
	assert.Nil(t, cache.Get(ctx, addr))
}

func TestCoordinateCacheDownDegradesToMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	assert.Nil(t, cache.Get(context.Background(), geo.Address{City: "Sorocaba"}))
}

func TestCoordinateCacheReadErrorDegradesToMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewCoordinateCache(client, time.Hour, logger.NewTestLogger(t))

	addr := geo.Address{City: "Sorocaba"}
	mock.ExpectGet("geo:coord:" + geo.Normalize(addr.QueryString())).SetErr(assert.AnError)

	assert.Nil(t, cache.Get(context.Background(), addr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoordinateCacheWriteErrorIsSwallowed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewCoordinateCache(client, time.Hour, logger.NewTestLogger(t))

	addr := geo.Address{City: "Sorocaba"}
	raw, err := json.Marshal(CachedCoordinate{
		Point:  geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526},
		Source: models.CoordinateSourceGeocoder,
	})
	require.NoError(t, err)
	mock.ExpectSet("geo:coord:"+geo.Normalize(addr.QueryString()), raw, time.Hour).SetErr(assert.AnError)

	cache.Set(context.Background(), addr, geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526}, models.CoordinateSourceGeocoder)
	assert.NoError(t, mock.ExpectationsWereMet())
}
