package cache

import (
	"context"
	"errors"

	"github.com/makahco2025-svg/test3/internal/domain"
)

// CatalogCache holds catalog reads. Entries live under the generation that
// was current when their backend read started; Invalidate starts a new
// generation, so entries read before it are never returned again.
type CatalogCache interface {
	Generation(ctx context.Context) (int64, error)
	GetProducts(ctx context.Context, gen int64, key string) ([]domain.Product, error)
	SetProducts(ctx context.Context, gen int64, key string, products []domain.Product) error
	GetProduct(ctx context.Context, gen int64, id int64) (*domain.Product, error)
	SetProduct(ctx context.Context, gen int64, product *domain.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
