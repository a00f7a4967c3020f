package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/redis/go-redis/v9"
)

const generationKey = "catalog:generation"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

// RedisCache namespaces every entry with a generation counter; bumping the
// counter orphans all older entries, which then age out by TTL.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// Generation returns the current cache generation. Callers read it before
// the backend and hand it back to the setters.
func (r RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

func (r RedisCache) GetProducts(ctx context.Context, gen int64, key string) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.get(ctx, cacheKey(gen, "list:"+key), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r RedisCache) SetProducts(ctx context.Context, gen int64, key string, products []domain.Product) error {
	return r.set(ctx, cacheKey(gen, "list:"+key), products)
}

func (r RedisCache) GetProduct(ctx context.Context, gen int64, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := r.get(ctx, cacheKey(gen, productKey(id)), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r RedisCache) SetProduct(ctx context.Context, gen int64, product *domain.Product) error {
	return r.set(ctx, cacheKey(gen, productKey(product.ID)), product)
}

func (r RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (r RedisCache) get(ctx context.Context, key string, v any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal catalog entry failed: %w", err)
	}
	return nil
}

func (r RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal catalog entry failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(gen int64, suffix string) string {
	return fmt.Sprintf("catalog:v%d:%s", gen, suffix)
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
