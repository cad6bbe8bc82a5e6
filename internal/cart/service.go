package cart

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
	"github.com/wichananm65/clickshop-backend/internal/metrics"
	"github.com/wichananm65/clickshop-backend/internal/product"
	"github.com/wichananm65/clickshop-backend/internal/user"
)

const (
	msgInvalidID        = "The provided ID parameter is invalid"
	msgCartDoesNotExist = "Cart does not exist"
	msgCartNotFound     = "Cart not found"
	msgTheCartMissing   = "The cart does not exist"
	msgProductMissing   = "The product does not exist"
	msgDuplicateItem    = "There is already a cart item registered with the same cart and product, update the existing record"
	msgItemMissing      = "The cart item does not exist"
	msgItemNotFound     = "Cart item not found"
	msgUserNotFound     = "User not found"
	msgInvalidQuantity  = "Quantity must be a whole number of at least 1"
	msgInvalidUnitPrice = "Unit price must be at least 0.01 and at most 99999999.99"
	msgGetCart          = "Error getting cart"
	msgGetItems         = "Error getting cart items"
	msgUpdateTotal      = "error updating cart total"
	msgInternal         = "INTERNAL SERVER ERROR"
)

// Catalog is the read-only product lookup the cart depends on.
type Catalog interface {
	FindOne(ctx context.Context, id int) (product.Product, error)
	FindMany(ctx context.Context, ids []int) (map[int]product.Product, error)
	PrimaryImage(ctx context.Context, productID int) (string, error)
}

// Identity confirms users exist before a cart is created for them.
type Identity interface {
	FindOne(ctx context.Context, id int) (user.User, error)
}

type Service struct {
	store   Store
	catalog Catalog
	users   Identity
	metrics *metrics.Metrics
}

func NewService(store Store, catalog Catalog, users Identity, m *metrics.Metrics) *Service {
	return &Service{store: store, catalog: catalog, users: users, metrics: m}
}

// GetCartByUserID returns the user's cart with its items.
func (s *Service) GetCartByUserID(ctx context.Context, userID int) (Cart, error) {
	if userID <= 0 {
		return Cart{}, apperror.BadRequest(msgInvalidID)
	}
	c, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Cart{}, apperror.NotFound(msgCartDoesNotExist)
		}
		return Cart{}, apperror.Internal(msgGetCart, err)
	}
	items, err := s.store.ListItems(ctx, c.ID)
	if err != nil {
		return Cart{}, apperror.Internal(msgGetCart, err)
	}
	c.Items = items
	return c, nil
}

// ListItems returns the cart's items with a catalog snapshot attached. Catalog
// failures leave the snapshot off instead of failing the request.
func (s *Service) ListItems(ctx context.Context, userID int) ([]Item, error) {
	if userID <= 0 {
		return nil, apperror.BadRequest(msgInvalidID)
	}
	c, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.NotFound(msgCartNotFound)
		}
		return nil, apperror.Internal(msgGetItems, err)
	}
	items, err := s.store.ListItems(ctx, c.ID)
	if err != nil {
		return nil, apperror.Internal(msgGetItems, err)
	}
	s.attachProducts(ctx, items)
	return items, nil
}

func (s *Service) attachProducts(ctx context.Context, items []Item) {
	if len(items) == 0 {
		return
	}
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.FindMany(ctx, ids)
	if err != nil {
		log.Warnw("catalog lookup failed, listing items without product details", "error", err)
		return
	}
	for i := range items {
		p, ok := products[items[i].ProductID]
		if !ok {
			continue
		}
		snap := &ProductSnapshot{Name: p.Name, IsActive: p.IsActive, Stock: p.Stock}
		img, err := s.catalog.PrimaryImage(ctx, p.ID)
		switch {
		case err == nil:
			snap.Image = img
		case !errors.Is(err, product.ErrNoImage):
			log.Warnw("product image lookup failed", "productId", p.ID, "error", err)
		}
		items[i].Product = snap
	}
}

// EnsureCart returns the user's cart, creating an empty one for a known user.
func (s *Service) EnsureCart(ctx context.Context, userID int) (Cart, error) {
	if userID <= 0 {
		return Cart{}, apperror.BadRequest(msgInvalidID)
	}
	var out Cart
	err := s.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.GetByUserID(ctx, userID)
		if err == nil {
			items, err := repo.ListItems(ctx, c.ID)
			if err != nil {
				return apperror.Internal(msgGetCart, err)
			}
			c.Items = items
			out = c
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return apperror.Internal(msgGetCart, err)
		}
		if _, err := s.users.FindOne(ctx, userID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return apperror.NotFound(msgUserNotFound)
			}
			return apperror.Internal(msgInternal, err)
		}
		c, err = repo.Create(ctx, userID)
		if err != nil {
			return apperror.Internal(msgInternal, err)
		}
		c.Items = []Item{}
		out = c
		return nil
	})
	s.metrics.ObserveCartMutation("ensure_cart", err)
	if err != nil {
		return Cart{}, toAppError(err)
	}
	return out, nil
}

// AddItem creates a new line for a product that is not yet in the cart.
func (s *Service) AddItem(ctx context.Context, userID int, in AddItemInput) (Item, error) {
	if userID <= 0 || in.ProductID <= 0 {
		return Item{}, apperror.BadRequest(msgInvalidID)
	}
	if in.Quantity < 1 {
		return Item{}, apperror.BadRequest(msgInvalidQuantity)
	}
	if in.UnitPrice.LessThan(minUnitPrice) || in.UnitPrice.GreaterThan(maxUnitPrice) {
		return Item{}, apperror.BadRequest(msgInvalidUnitPrice)
	}

	var created Item
	err := s.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.LockByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperror.NotFound(msgTheCartMissing)
			}
			return apperror.Internal(msgInternal, err)
		}
		if _, err := s.catalog.FindOne(ctx, in.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return apperror.NotFound(msgProductMissing)
			}
			return apperror.Internal(msgInternal, err)
		}
		if _, err := repo.FindItemByProduct(ctx, c.ID, in.ProductID); err == nil {
			return apperror.Conflict(msgDuplicateItem)
		} else if !errors.Is(err, ErrItemNotFound) {
			return apperror.Internal(msgInternal, err)
		}

		unitPrice := in.UnitPrice.Round(2)
		created, err = repo.CreateItem(ctx, Item{
			CartID:    c.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  subtotal(unitPrice, in.Quantity),
		})
		if err != nil {
			if errors.Is(err, ErrDuplicateItem) {
				return apperror.Conflict(msgDuplicateItem)
			}
			return apperror.Internal(msgInternal, err)
		}
		return RecomputeTotals(ctx, repo, c.ID)
	})
	s.metrics.ObserveCartMutation("add_item", err)
	if err != nil {
		return Item{}, toAppError(err)
	}
	return created, nil
}

// UpdateItemQuantity sets a line's quantity and subtotal. A missing line is a
// Conflict here while RemoveItem reports NotFound.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID, quantity int) (Item, error) {
	if userID <= 0 || itemID <= 0 {
		return Item{}, apperror.BadRequest(msgInvalidID)
	}
	if quantity < 1 {
		return Item{}, apperror.BadRequest(msgInvalidQuantity)
	}

	var updated Item
	err := s.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.LockByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperror.NotFound(msgTheCartMissing)
			}
			return apperror.Internal(msgInternal, err)
		}
		it, err := repo.GetItem(ctx, c.ID, itemID)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return apperror.Conflict(msgItemMissing)
			}
			return apperror.Internal(msgInternal, err)
		}
		it.Quantity = quantity
		it.Subtotal = subtotal(it.UnitPrice, quantity)
		if updated, err = repo.UpdateItem(ctx, it); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return apperror.Conflict(msgItemMissing)
			}
			return apperror.Internal(msgInternal, err)
		}
		return RecomputeTotals(ctx, repo, c.ID)
	})
	s.metrics.ObserveCartMutation("update_quantity", err)
	if err != nil {
		return Item{}, toAppError(err)
	}
	return updated, nil
}

// RemoveItem deletes one line and returns it as it was before deletion.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int) (Item, error) {
	if userID <= 0 || itemID <= 0 {
		return Item{}, apperror.BadRequest(msgInvalidID)
	}

	var removed Item
	err := s.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.LockByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperror.NotFound(msgTheCartMissing)
			}
			return apperror.Internal(msgInternal, err)
		}
		it, err := repo.GetItem(ctx, c.ID, itemID)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return apperror.NotFound(msgItemNotFound)
			}
			return apperror.Internal(msgInternal, err)
		}
		if err := repo.DeleteItem(ctx, c.ID, itemID); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return apperror.NotFound(msgItemNotFound)
			}
			return apperror.Internal(msgInternal, err)
		}
		removed = it
		return RecomputeTotals(ctx, repo, c.ID)
	})
	s.metrics.ObserveCartMutation("remove_item", err)
	if err != nil {
		return Item{}, toAppError(err)
	}
	return removed, nil
}

// RemoveAllItems empties the cart and returns the lines it held.
func (s *Service) RemoveAllItems(ctx context.Context, userID int) ([]Item, error) {
	if userID <= 0 {
		return nil, apperror.BadRequest(msgInvalidID)
	}

	var removed []Item
	err := s.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.LockByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperror.NotFound(msgCartNotFound)
			}
			return apperror.Internal(msgInternal, err)
		}
		removed, err = ClearItems(ctx, repo, c.ID)
		return err
	})
	s.metrics.ObserveCartMutation("remove_all", err)
	if err != nil {
		return nil, toAppError(err)
	}
	return removed, nil
}

// RecomputeTotals reloads the cart's lines and writes their summed subtotal
// and quantity onto the cart. It is the only writer of those columns.
func RecomputeTotals(ctx context.Context, repo Repository, cartID int) error {
	items, err := repo.ListItems(ctx, cartID)
	if err != nil {
		return apperror.Internal(msgUpdateTotal, err)
	}
	total := decimal.Zero
	quantity := 0
	for _, it := range items {
		total = total.Add(it.Subtotal)
		quantity += it.Quantity
	}
	if err := repo.UpdateTotals(ctx, cartID, total.Round(2), quantity); err != nil {
		return apperror.Internal(msgUpdateTotal, err)
	}
	return nil
}

// ClearItems deletes every line of the cart, zeroes its totals and returns the
// deleted lines.
func ClearItems(ctx context.Context, repo Repository, cartID int) ([]Item, error) {
	items, err := repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, apperror.Internal(msgInternal, err)
	}
	if err := repo.DeleteItems(ctx, cartID); err != nil {
		return nil, apperror.Internal(msgInternal, err)
	}
	if err := RecomputeTotals(ctx, repo, cartID); err != nil {
		return nil, err
	}
	return items, nil
}

// toAppError turns errors that escaped the typed paths, such as a failed commit,
// into an Internal error.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Internal(msgInternal, err)
}
