package product

import (
	"context"
	"fmt"
)

// Service is the Catalog Lookup used by the cart. It never writes.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindOne returns the product or ErrNotFound.
func (s *Service) FindOne(ctx context.Context, id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// FindMany returns the known products among ids keyed by id.
func (s *Service) FindMany(ctx context.Context, ids []int) (map[int]Product, error) {
	out := make(map[int]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// PrimaryImage returns the URL of the first image of a product.
func (s *Service) PrimaryImage(ctx context.Context, productID int) (string, error) {
	img, err := s.repo.PrimaryImage(ctx, productID)
	if err != nil {
		return "", err
	}
	return img.URL, nil
}
