package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/makahco2025-svg/test3/internal/domain"
)

// MemoryRepository keeps the catalog in process; admin edits live until
// restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	lastID   int64
	now      func() time.Time
}

func NewMemoryRepository(seed []domain.Product) *MemoryRepository {
	r := &MemoryRepository{
		products: make([]domain.Product, 0, len(seed)),
		now:      time.Now,
	}
	for _, p := range seed {
		r.products = append(r.products, clone(p))
		if p.ID > r.lastID {
			r.lastID = p.ID
		}
	}
	return r
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Match(p) {
			result = append(result, clone(p))
		}
	}
	return result, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return clone(r.products[i]), nil
}

func (r *MemoryRepository) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	p, err := prepare(p)
	if err != nil {
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = nextID(r.now(), r.lastID)
	r.lastID = p.ID
	r.products = append(r.products, p)
	return clone(p), nil
}

func (r *MemoryRepository) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	p, err := prepare(p)
	if err != nil {
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.ID)
	if i < 0 {
		return domain.Product{}, ErrProductNotFound
	}
	r.products[i] = p
	return clone(p), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products = append(r.products[:i:i], r.products[i+1:]...)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) indexOf(id int64) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
