package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
)

const (
	msgInvalidID     = "The provided ID parameter is invalid"
	msgOrderNotFound = "Order does not exist"
	msgGetOrders     = "Error getting orders"
)

// Record creates a PENDING order for userID with one item per line and
// writes the accumulated total. Callers run it inside the transaction that
// also empties the cart.
func Record(ctx context.Context, repo Repository, userID int, shipping Shipping, lines []Line, now time.Time) (Order, error) {
	ord, err := repo.Create(ctx, Order{
		UserID:   userID,
		Status:   StatusPending,
		Total:    decimal.Zero,
		Date:     now,
		Shipping: shipping,
	})
	if err != nil {
		return Order{}, err
	}

	total := decimal.Zero
	ord.Items = make([]Item, 0, len(lines))
	for _, l := range lines {
		it, err := repo.CreateItem(ctx, Item{
			OrderID:   ord.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
		if err != nil {
			return Order{}, err
		}
		ord.Items = append(ord.Items, it)
		total = total.Add(it.Subtotal)
	}

	ord.Total = total.Round(2)
	if err := repo.UpdateTotal(ctx, ord.ID, ord.Total); err != nil {
		return Order{}, err
	}
	return ord, nil
}

// Service is the read side of the order ledger.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, orderID int) (Order, error) {
	if orderID <= 0 {
		return Order{}, apperror.BadRequest(msgInvalidID)
	}
	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, apperror.NotFound(msgOrderNotFound)
		}
		return Order{}, apperror.Internal(msgGetOrders, err)
	}
	return ord, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	if userID <= 0 {
		return nil, apperror.BadRequest(msgInvalidID)
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(msgGetOrders, err)
	}
	return orders, nil
}
