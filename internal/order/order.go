package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// Shipping is the delivery address captured at checkout.
type Shipping struct {
	Address    string `json:"shippingAddress" validate:"required,min=4,max=60"`
	City       string `json:"city" validate:"required,min=4,max=60"`
	Province   string `json:"province" validate:"required,min=4,max=60"`
	PostalCode string `json:"postalCode" validate:"required,min=4,max=60"`
	Country    string `json:"country" validate:"required,min=4,max=60"`
}

// Order represents a purchase made by a user. Total is the sum of the item
// subtotals.
type Order struct {
	ID     int             `json:"orderId"`
	UserID int             `json:"userId"`
	Status Status          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Date   time.Time       `json:"date"`
	Shipping
	Items []Item `json:"items"`
}

// Item is a price snapshot of one cart line; it never changes after creation.
type Item struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"orderId"`
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Line is the input for one order item.
type Line struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
