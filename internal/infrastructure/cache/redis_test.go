package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateCache(rdb, time.Minute), mr
}

func TestRateCache_SetGetInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "emp", "USD", "GTQ")
	require.NoError(t, err)
	assert.False(t, ok)

	v1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.7500"), v1))
	rate, ok, err := c.Get(ctx, "emp", "USD", "GTQ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("7.75")))

	_, ok, _ = c.Get(ctx, "otra", "USD", "GTQ")
	assert.False(t, ok, "la clave incluye la empresa")

	require.NoError(t, c.Invalidate(ctx, "emp", "USD", "GTQ", v1))
	_, ok, _ = c.Get(ctx, "emp", "USD", "GTQ")
	assert.False(t, ok)
}

func TestRateCache_Expira(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "emp", "USD", "EUR", decimal.RequireFromString("0.92"), time.Now()))
	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "emp", "USD", "EUR")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateCache_ValorCorrupto(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(rateKey("emp", "USD", "MXN"), "no-numero"))
	_, ok, err := c.Get(context.Background(), "emp", "USD", "MXN")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(rateKey("emp", "USD", "MXN")))
}

func TestRateCache_NoSobrescribeConVersionAnterior(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	viejo := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	nuevo := viejo.Add(time.Second)

	// la escritura de la tasa nueva llega antes que la de una lectura que vio la fila anterior
	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.90"), nuevo))
	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.80"), viejo))

	rate, ok, err := c.Get(ctx, "emp", "USD", "GTQ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7.9", rate.String())

	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.95"), nuevo.Add(time.Second)))
	rate, _, _ = c.Get(ctx, "emp", "USD", "GTQ")
	assert.Equal(t, "7.95", rate.String())
}

func TestRateCache_InvalidacionBloqueaLaMismaVersion(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	v := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.80"), v))
	require.NoError(t, c.Invalidate(ctx, "emp", "USD", "GTQ", v))
	assert.True(t, mr.Exists(rateKey("emp", "USD", "GTQ")), "la invalidación queda registrada")

	// una lectura en vuelo con la fila eliminada no la revive
	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.80"), v))
	_, ok, err := c.Get(ctx, "emp", "USD", "GTQ")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.85"), v.Add(time.Millisecond)))
	rate, ok, _ := c.Get(ctx, "emp", "USD", "GTQ")
	assert.True(t, ok)
	assert.Equal(t, "7.85", rate.String())
}

func TestRateCache_InvalidacionAntiguaNoBorraTasaNueva(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	v := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.Set(ctx, "emp", "USD", "GTQ", decimal.RequireFromString("7.90"), v))
	require.NoError(t, c.Invalidate(ctx, "emp", "USD", "GTQ", v.Add(-time.Hour)))
	rate, ok, _ := c.Get(ctx, "emp", "USD", "GTQ")
	assert.True(t, ok)
	assert.Equal(t, "7.9", rate.String())
}
