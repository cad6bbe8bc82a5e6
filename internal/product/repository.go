package product

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrNoImage  = errors.New("product has no image")
)

// Repository is the read side of the catalog.
type Repository interface {
	GetByID(ctx context.Context, id int) (Product, error)
	// ListByIDs returns the products whose id is in ids, in the order of
	// ids. Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []int) ([]Product, error)
	PrimaryImage(ctx context.Context, productID int) (Image, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// seeding local data.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[int]Product
	images   map[int][]Image
}

func NewInMemoryRepository(seed []Product, images []Image) *InMemoryRepository {
	r := &InMemoryRepository{
		products: make(map[int]Product, len(seed)),
		images:   make(map[int][]Image),
	}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	for _, img := range images {
		r.images[img.ProductID] = append(r.images[img.ProductID], img)
	}
	for id := range r.images {
		imgs := r.images[id]
		sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Position < imgs[j].Position })
	}
	return r
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) PrimaryImage(ctx context.Context, productID int) (Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	imgs := r.images[productID]
	if len(imgs) == 0 {
		return Image{}, ErrNoImage
	}
	return imgs[0], nil
}
