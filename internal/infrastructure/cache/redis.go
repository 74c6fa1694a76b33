// Package cache implementa la caché de tasas de cambio sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// NewRedis crea el cliente y valida la conexión al arrancar.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// RateCache implementa currency.RateCache. Cada entrada guarda "version|tasa", donde version es
// el created_at (µs) de la fila de origen. Una tasa vacía marca la entrada como invalidada.
type RateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRateCache(rdb *redis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateCache{rdb: rdb, ttl: ttl}
}

func rateKey(companyID, from, to string) string {
	return "nexus:tasa:" + companyID + ":" + from + ":" + to
}

// setIfNewer escribe la entrada salvo que la actual sea más nueva. Una invalidación
// también bloquea valores de su misma versión.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local sep = string.find(cur, '|', 1, true)
  if sep then
    local v = tonumber(string.sub(cur, 1, sep - 1))
    local nv = tonumber(ARGV[1])
    if v and (v > nv or (sep == string.len(cur) and v >= nv)) then
      return 0
    end
  end
end
redis.call('SET', KEYS[1], ARGV[1] .. '|' .. ARGV[2], 'PX', ARGV[3])
return 1
`)

func (c *RateCache) Get(ctx context.Context, companyID, from, to string) (decimal.Decimal, bool, error) {
	key := rateKey(companyID, from, to)
	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis: get tasa: %w", err)
	}
	version, value, found := strings.Cut(raw, "|")
	if found && value == "" {
		return decimal.Zero, false, nil
	}
	rate, perr := decimal.NewFromString(value)
	if _, verr := strconv.ParseInt(version, 10, 64); !found || verr != nil || perr != nil {
		// valor corrupto: se trata como ausente
		_ = c.rdb.Del(ctx, key).Err()
		return decimal.Zero, false, nil
	}
	return rate, true, nil
}

// Set guarda la tasa si no hay en caché una versión más reciente.
func (c *RateCache) Set(ctx context.Context, companyID, from, to string, rate decimal.Decimal, version time.Time) error {
	if err := c.write(ctx, rateKey(companyID, from, to), rate.String(), version); err != nil {
		return fmt.Errorf("redis: set tasa: %w", err)
	}
	return nil
}

// Invalidate marca la entrada como ausente hasta que llegue una tasa posterior a version.
func (c *RateCache) Invalidate(ctx context.Context, companyID, from, to string, version time.Time) error {
	if err := c.write(ctx, rateKey(companyID, from, to), "", version); err != nil {
		return fmt.Errorf("redis: invalidar tasa: %w", err)
	}
	return nil
}

func (c *RateCache) write(ctx context.Context, key, value string, version time.Time) error {
	args := []any{version.UnixMicro(), value, c.ttl.Milliseconds()}
	return setIfNewer.Run(ctx, c.rdb, []string{key}, args...).Err()
}
