package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultCarTTL = 5 * time.Minute

// carCache is a read-through cache in front of the car catalog. Any redis
// failure falls back to the wrapped repository.
type carCache struct {
	next   repository.CarRepository
	client redis.Cmdable
	ttl    time.Duration
}

func NewCarCache(next repository.CarRepository, client redis.Cmdable, ttl time.Duration) repository.CarRepository {
	if ttl <= 0 {
		ttl = defaultCarTTL
	}
	return &carCache{next: next, client: client, ttl: ttl}
}

func carKey(id int32) string {
	return fmt.Sprintf("car:%d", id)
}

func carListKey(includeHidden bool) string {
	return fmt.Sprintf("cars:list:%t", includeHidden)
}

func (c *carCache) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	key := carKey(id)
	var car domain.Car
	if c.load(ctx, key, &car) {
		return &car, nil
	}

	loaded, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, loaded)
	return loaded, nil
}

func (c *carCache) List(ctx context.Context, includeHidden bool) ([]domain.Car, error) {
	key := carListKey(includeHidden)
	var cars []domain.Car
	if c.load(ctx, key, &cars) {
		return cars, nil
	}

	loaded, err := c.next.List(ctx, includeHidden)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, loaded)
	return loaded, nil
}

func (c *carCache) load(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logger.Warn("Car cache read failed, using database", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("Car cache entry is corrupt, using database", "key", key, "error", err)
		return false
	}
	return true
}

func (c *carCache) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("Car cache write failed", "key", key, "error", err)
	}
}
