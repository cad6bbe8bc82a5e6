package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
	"github.com/wichananm65/clickshop-backend/internal/cart"
	"github.com/wichananm65/clickshop-backend/internal/events"
	"github.com/wichananm65/clickshop-backend/internal/metrics"
	"github.com/wichananm65/clickshop-backend/internal/order"
)

const (
	msgInvalidID    = "The provided ID parameter is invalid"
	msgCartNotFound = "Cart or items not found"
	msgCheckout     = "Error checking out"
)

// Service converts a cart into an order.
type Service struct {
	uow       UnitOfWork
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(uow UnitOfWork, publisher events.Publisher, m *metrics.Metrics) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{uow: uow, publisher: publisher, metrics: m, now: time.Now}
}

// Checkout locks the user's cart, records an order from its lines and empties
// the cart in one transaction. An OrderCreated event is published after the
// commit; a publish failure is logged and does not fail the checkout.
func (s *Service) Checkout(ctx context.Context, userID int, shipping order.Shipping) (order.Order, error) {
	start := time.Now()
	if userID <= 0 {
		err := apperror.BadRequest(msgInvalidID)
		s.metrics.ObserveCheckout(start, err)
		return order.Order{}, err
	}

	var placed order.Order
	err := s.uow.InTx(ctx, func(carts cart.Repository, orders order.Repository) error {
		c, err := carts.LockByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, cart.ErrNotFound) {
				return apperror.NotFound(msgCartNotFound)
			}
			return err
		}
		items, err := carts.ListItems(ctx, c.ID)
		if err != nil {
			return err
		}
		// An empty cart never becomes a zero-total order.
		if len(items) == 0 {
			return apperror.NotFound(msgCartNotFound)
		}

		lines := make([]order.Line, 0, len(items))
		for _, it := range items {
			lines = append(lines, order.Line{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Subtotal:  it.Subtotal,
			})
		}

		placed, err = order.Record(ctx, orders, userID, shipping, lines, s.now().UTC())
		if err != nil {
			return err
		}
		_, err = cart.ClearItems(ctx, carts, c.ID)
		return err
	})
	if err != nil {
		if apperror.KindOf(err) != apperror.KindNotFound {
			err = apperror.Internal(msgCheckout, err)
		}
		s.metrics.ObserveCheckout(start, err)
		return order.Order{}, err
	}
	s.metrics.ObserveCheckout(start, nil)

	if err := s.publisher.PublishOrderCreated(ctx, placed); err != nil {
		log.Warnw("publish order created failed", "orderId", placed.ID, "userId", userID, "error", err)
	}
	log.Infow("checkout completed", "orderId", placed.ID, "userId", userID, "total", placed.Total.String())
	return placed, nil
}
