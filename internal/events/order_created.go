package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/clickshop-backend/internal/order"
)

const (
	Exchange               = "clickshop.events"
	OrderCreatedRoutingKey = "order.created.v1"

	orderCreatedEventName    = "OrderCreated"
	orderCreatedEventVersion = 1
	producer                 = "clickshop-backend"
)

type OrderCreatedItem struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderCreatedPayload struct {
	OrderID int                `json:"orderId"`
	UserID  int                `json:"userId"`
	Total   decimal.Decimal    `json:"total"`
	Items   []OrderCreatedItem `json:"items"`
}

type OrderCreatedEnvelope = EventEnvelope[OrderCreatedPayload]

// BuildOrderCreatedEnvelope wraps a committed order in an OrderCreated event.
func BuildOrderCreatedEnvelope(o order.Order, now time.Time) OrderCreatedEnvelope {
	items := make([]OrderCreatedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderCreatedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}

	return OrderCreatedEnvelope{
		EventID:      uuid.NewString(),
		EventName:    orderCreatedEventName,
		EventVersion: orderCreatedEventVersion,
		Producer:     producer,
		PartitionKey: strconv.Itoa(o.UserID),
		OccurredAt:   now.UTC(),
		Payload: OrderCreatedPayload{
			OrderID: o.ID,
			UserID:  o.UserID,
			Total:   o.Total,
			Items:   items,
		},
	}
}
