package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/makahco2025-svg/test3/internal/cache"
	"github.com/makahco2025-svg/test3/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedRepository reads through a CatalogCache and collapses concurrent
// misses for the same key into one backend read. Writes go to the backend
// first and then invalidate the whole cache. Cache failures degrade to
// backend reads.
//
// The cache generation is taken before the backend is read, so a read that
// races a write is stored under the generation the write retired.
type CachedRepository struct {
	next   Repository
	cache  cache.CatalogCache
	group  singleflight.Group
	logger *zap.Logger
}

func NewCachedRepository(next Repository, c cache.CatalogCache, logger *zap.Logger) *CachedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRepository{next: next, cache: c, logger: logger}
}

func (r *CachedRepository) List(ctx context.Context, filter Filter) ([]domain.Product, error) {
	key := filter.Key()
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		r.logger.Warn("catalog cache unavailable", zap.String("filter", key), zap.Error(err))
		return r.next.List(ctx, filter)
	}

	products, err := r.cache.GetProducts(ctx, gen, key)
	if err == nil {
		return products, nil
	}
	r.logMiss(err, zap.String("filter", key))

	flight := fmt.Sprintf("v%d:list:%s", gen, key)
	v, err, _ := r.group.Do(flight, func() (any, error) {
		products, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if err := r.cache.SetProducts(ctx, gen, key, products); err != nil {
			r.logger.Warn("failed to cache product list", zap.String("filter", key), zap.Error(err))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAll(v.([]domain.Product)), nil
}

func (r *CachedRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		r.logger.Warn("catalog cache unavailable", zap.Int64("product_id", id), zap.Error(err))
		return r.next.Get(ctx, id)
	}

	product, err := r.cache.GetProduct(ctx, gen, id)
	if err == nil {
		return *product, nil
	}
	r.logMiss(err, zap.Int64("product_id", id))

	flight := fmt.Sprintf("v%d:product:%d", gen, id)
	v, err, _ := r.group.Do(flight, func() (any, error) {
		p, err := r.next.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := r.cache.SetProduct(ctx, gen, &p); err != nil {
			r.logger.Warn("failed to cache product", zap.Int64("product_id", id), zap.Error(err))
		}
		return p, nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return clone(v.(domain.Product)), nil
}

func (r *CachedRepository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	created, err := r.next.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	r.invalidate(ctx)
	return created, nil
}

func (r *CachedRepository) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	updated, err := r.next.Update(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	r.invalidate(ctx)
	return updated, nil
}

func (r *CachedRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedRepository) Close() error {
	return r.next.Close()
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		r.logger.Error("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (r *CachedRepository) logMiss(err error, field zap.Field) {
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("catalog cache read failed", field, zap.Error(err))
	}
}

func cloneAll(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = clone(p)
	}
	return out
}
