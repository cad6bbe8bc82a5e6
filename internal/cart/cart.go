package cart

import "github.com/shopspring/decimal"

// Cart is the per-user cart. Total and QuantityTotal are derived from the
// line items and only written by RecomputeTotals.
type Cart struct {
	ID            int             `json:"cartId"`
	UserID        int             `json:"userId"`
	Total         decimal.Decimal `json:"total"`
	QuantityTotal int             `json:"quantityTotal"`
	Items         []Item          `json:"items"`
}

// Item is one cart line. There is at most one line per (cart, product).
type Item struct {
	ID        int             `json:"cartItemId"`
	CartID    int             `json:"cartId"`
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`

	Product *ProductSnapshot `json:"product,omitempty"`
}

// ProductSnapshot is the catalog view attached to items when listing.
type ProductSnapshot struct {
	Name     string `json:"productName"`
	IsActive bool   `json:"isActive"`
	Stock    int    `json:"stock"`
	Image    string `json:"image,omitempty"`
}

// AddItemInput is the payload for adding a line to a cart.
type AddItemInput struct {
	ProductID int             `json:"productId" validate:"gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0.01,lte=99999999.99"`
}

// UpdateQuantityInput is the payload for changing a line's quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

var (
	minUnitPrice = decimal.RequireFromString("0.01")
	maxUnitPrice = decimal.RequireFromString("99999999.99")
)

func subtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
