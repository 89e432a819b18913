// Package cache implementa la caché versionada de tarifas sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/joyeria-api/internal/application/rates"
)

const rateVersionKey = "rates:version"

var _ rates.Cache = (*RedisCache)(nil)

// RedisCache claves con sufijo de versión: Bump sube la versión y todas las claves previas
// quedan huérfanas hasta que expira su TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache construye la caché.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Version versión actual; la inicializa en 1 si falta.
func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, rateVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, rateVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, rateVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey une las partes y agrega la versión vigente.
func (c *RedisCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", strings.Join(parts, ":"), ver), nil
}

// FetchJSON lee la clave o la llena con loader. Los errores del loader se devuelven sin envolver.
func (c *RedisCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida todas las claves incrementando la versión. Las demás instancias leen la
// misma clave de versión en cada BuildKey, así que ven el cambio sin aviso adicional.
func (c *RedisCache) Bump(ctx context.Context) error {
	return c.client.Incr(ctx, rateVersionKey).Err()
}
