package order

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, ord Order) (Order, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateTotal(ctx context.Context, orderID int, total decimal.Decimal) error
	GetByID(ctx context.Context, orderID int) (Order, error)
	// ListByUser returns the user's orders with items, newest first.
	ListByUser(ctx context.Context, userID int) ([]Order, error)
}

type InMemoryRepository struct {
	mu         sync.RWMutex
	orders     map[int]Order
	items      map[int]Item
	nextID     int
	nextItemID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders:     make(map[int]Order),
		items:      make(map[int]Item),
		nextID:     1,
		nextItemID: 1,
	}
}

// Snapshot copies the current state and returns a func that puts it back.
func (r *InMemoryRepository) Snapshot() func() {
	r.mu.RLock()
	orders := make(map[int]Order, len(r.orders))
	for k, v := range r.orders {
		orders[k] = v
	}
	items := make(map[int]Item, len(r.items))
	for k, v := range r.items {
		items[k] = v
	}
	nextID, nextItemID := r.nextID, r.nextItemID
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.orders, r.items = orders, items
		r.nextID, r.nextItemID = nextID, nextItemID
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord.ID = r.nextID
	r.nextID++
	ord.Items = nil
	r.orders[ord.ID] = ord
	return ord, nil
}

func (r *InMemoryRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[item.OrderID]; !ok {
		return Item{}, ErrNotFound
	}
	item.ID = r.nextItemID
	r.nextItemID++
	r.items[item.ID] = item
	return item, nil
}

func (r *InMemoryRepository) UpdateTotal(ctx context.Context, orderID int, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	ord.Total = total
	r.orders[orderID] = ord
	return nil
}

func (r *InMemoryRepository) itemsOf(orderID int) []Item {
	out := make([]Item, 0)
	for _, it := range r.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *InMemoryRepository) GetByID(ctx context.Context, orderID int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ord, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	ord.Items = r.itemsOf(orderID)
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			ord.Items = r.itemsOf(ord.ID)
			out = append(out, ord)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
