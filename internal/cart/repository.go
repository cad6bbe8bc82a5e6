package cart

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("cart not found")
	ErrItemNotFound  = errors.New("cart item not found")
	ErrDuplicateItem = errors.New("cart item already exists for product")
)

// Repository provides access to carts and their line items. Items are
// returned in insertion order.
type Repository interface {
	GetByUserID(ctx context.Context, userID int) (Cart, error)
	// LockByUserID loads the cart and holds a row lock until the surrounding
	// transaction ends.
	LockByUserID(ctx context.Context, userID int) (Cart, error)
	Create(ctx context.Context, userID int) (Cart, error)
	UpdateTotals(ctx context.Context, cartID int, total decimal.Decimal, quantity int) error

	ListItems(ctx context.Context, cartID int) ([]Item, error)
	GetItem(ctx context.Context, cartID, itemID int) (Item, error)
	FindItemByProduct(ctx context.Context, cartID, productID int) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, cartID, itemID int) error
	DeleteItems(ctx context.Context, cartID int) error
}

// Store is a Repository that can run a function inside a transaction. The
// Repository handed to fn must be used for every read and write of that unit.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(Repository) error) error
}

// InMemoryRepository is used for tests and local scenarios. Transactions are
// serialized and roll back by restoring a snapshot.
type InMemoryRepository struct {
	txMu sync.Mutex

	mu         sync.RWMutex
	carts      map[int]Cart
	items      map[int]Item
	nextCartID int
	nextItemID int
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{
		carts:      make(map[int]Cart, len(seed)),
		items:      make(map[int]Item),
		nextCartID: 1,
		nextItemID: 1,
	}
	for _, c := range seed {
		items := c.Items
		c.Items = nil
		r.carts[c.ID] = c
		if c.ID >= r.nextCartID {
			r.nextCartID = c.ID + 1
		}
		for _, it := range items {
			it.CartID = c.ID
			r.items[it.ID] = it
			if it.ID >= r.nextItemID {
				r.nextItemID = it.ID + 1
			}
		}
	}
	return r
}

func (r *InMemoryRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	restore := r.Snapshot()
	if err := fn(r); err != nil {
		restore()
		return err
	}
	return nil
}

// Snapshot copies the current state and returns a func that puts it back.
func (r *InMemoryRepository) Snapshot() func() {
	r.mu.RLock()
	carts := make(map[int]Cart, len(r.carts))
	for k, v := range r.carts {
		carts[k] = v
	}
	items := make(map[int]Item, len(r.items))
	for k, v := range r.items {
		items[k] = v
	}
	nextCart, nextItem := r.nextCartID, r.nextItemID
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.carts, r.items = carts, items
		r.nextCartID, r.nextItemID = nextCart, nextItem
	}
}

func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID int) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return Cart{}, ErrNotFound
}

func (r *InMemoryRepository) LockByUserID(ctx context.Context, userID int) (Cart, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *InMemoryRepository) Create(ctx context.Context, userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := Cart{ID: r.nextCartID, UserID: userID, Total: decimal.Zero}
	r.nextCartID++
	r.carts[c.ID] = c
	return c, nil
}

func (r *InMemoryRepository) UpdateTotals(ctx context.Context, cartID int, total decimal.Decimal, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return ErrNotFound
	}
	c.Total, c.QuantityTotal = total, quantity
	r.carts[cartID] = c
	return nil
}

func (r *InMemoryRepository) ListItems(ctx context.Context, cartID int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, 0)
	for _, it := range r.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetItem(ctx context.Context, cartID, itemID int) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[itemID]
	if !ok || it.CartID != cartID {
		return Item{}, ErrItemNotFound
	}
	return it, nil
}

func (r *InMemoryRepository) FindItemByProduct(ctx context.Context, cartID, productID int) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (r *InMemoryRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			return Item{}, ErrDuplicateItem
		}
	}
	item.ID = r.nextItemID
	r.nextItemID++
	item.Product = nil
	r.items[item.ID] = item
	return item, nil
}

func (r *InMemoryRepository) UpdateItem(ctx context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[item.ID]
	if !ok || existing.CartID != item.CartID {
		return Item{}, ErrItemNotFound
	}
	existing.Quantity = item.Quantity
	existing.Subtotal = item.Subtotal
	r.items[item.ID] = existing
	return existing, nil
}

func (r *InMemoryRepository) DeleteItem(ctx context.Context, cartID, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.CartID != cartID {
		return ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *InMemoryRepository) DeleteItems(ctx context.Context, cartID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, it := range r.items {
		if it.CartID == cartID {
			delete(r.items, id)
		}
	}
	return nil
}
