package product

import "github.com/shopspring/decimal"

// Product is the catalog view the checkout core reads. It maps to the
// `products` table; images live in `product_images`.
type Product struct {
	ID       int             `json:"productId"`
	Name     string          `json:"productName"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	IsActive bool            `json:"isActive"`
}

// Image is a product picture ordered by Position (lowest first).
type Image struct {
	ProductID int    `json:"productId"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}
