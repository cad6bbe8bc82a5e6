package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
	"github.com/wichananm65/clickshop-backend/internal/product"
	"github.com/wichananm65/clickshop-backend/internal/user"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	repo    *InMemoryRepository
	service *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := NewInMemoryRepository([]Cart{{ID: 1, UserID: 7, Total: decimal.Zero}})
	catalog := product.NewService(product.NewInMemoryRepository(
		[]product.Product{
			{ID: 1, Name: "Leash", Price: dec("10"), Stock: 5, IsActive: true},
			{ID: 2, Name: "Bowl", Price: dec("15"), Stock: 0, IsActive: false},
			{ID: 3, Name: "Toy", Price: dec("2.5"), Stock: 9, IsActive: true},
			{ID: 7, Name: "Collar", Price: dec("10"), Stock: 4, IsActive: true},
		},
		[]product.Image{{ProductID: 1, URL: "leash.png", Position: 0}},
	))
	users := user.NewService(user.NewInMemoryRepository([]user.User{{ID: 7}, {ID: 8}}))
	return fixture{repo: repo, service: NewService(repo, catalog, users, nil)}
}

func requireKind(t *testing.T, err error, kind apperror.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	var ae *apperror.Error
	require.True(t, errors.As(err, &ae), "expected *apperror.Error, got %T", err)
	require.Equal(t, kind, ae.Kind)
	if msg != "" {
		require.Equal(t, msg, ae.Message)
	}
}

func TestAddItem_RecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	it, err := f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 3, UnitPrice: dec("10")})
	require.NoError(t, err)
	require.True(t, it.Subtotal.Equal(dec("30")))
	require.NotZero(t, it.ID)

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 2, Quantity: 4, UnitPrice: dec("15")})
	require.NoError(t, err)

	c, err := f.service.GetCartByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.Equal(dec("90")), "total %s", c.Total)
	require.Equal(t, 7, c.QuantityTotal)
	require.Len(t, c.Items, 2)
}

func TestAddItem_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 99, AddItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("1")})
	requireKind(t, err, apperror.KindNotFound, "The cart does not exist")

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 42, Quantity: 1, UnitPrice: dec("1")})
	requireKind(t, err, apperror.KindNotFound, "The product does not exist")

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 0, UnitPrice: dec("1")})
	requireKind(t, err, apperror.KindBadRequest, "")

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("100000000")})
	requireKind(t, err, apperror.KindBadRequest, "")

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 3, UnitPrice: dec("0.004")})
	requireKind(t, err, apperror.KindBadRequest, msgInvalidUnitPrice)

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("10")})
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 5, UnitPrice: dec("10")})
	requireKind(t, err, apperror.KindConflict, msgDuplicateItem)

	items, err := f.repo.ListItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity, "duplicates must not be merged")
}

func TestUpdateItemQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	it, err := f.service.AddItem(ctx, 7, AddItemInput{ProductID: 3, Quantity: 1, UnitPrice: dec("2.5")})
	require.NoError(t, err)

	updated, err := f.service.UpdateItemQuantity(ctx, 7, it.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, updated.Quantity)
	require.True(t, updated.Subtotal.Equal(dec("10")))

	c, err := f.repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.Equal(dec("10")))
	require.Equal(t, 4, c.QuantityTotal)

	_, err = f.service.UpdateItemQuantity(ctx, 7, 999, 2)
	requireKind(t, err, apperror.KindConflict, "The cart item does not exist")

	c, err = f.repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.Equal(dec("10")), "total %s", c.Total)
	require.Equal(t, 4, c.QuantityTotal)

	_, err = f.service.UpdateItemQuantity(ctx, 8, it.ID, 2)
	requireKind(t, err, apperror.KindNotFound, "The cart does not exist")

	_, err = f.service.UpdateItemQuantity(ctx, 7, it.ID, 0)
	requireKind(t, err, apperror.KindBadRequest, "")
}

func TestAddUpdateRemove_TotalsFollowLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	it, err := f.service.AddItem(ctx, 7, AddItemInput{ProductID: 7, Quantity: 3, UnitPrice: dec("10.00")})
	require.NoError(t, err)
	c, err := f.service.GetCartByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.Equal(dec("30.00")), "total %s", c.Total)
	require.Equal(t, 3, c.QuantityTotal)

	_, err = f.service.UpdateItemQuantity(ctx, 7, it.ID, 5)
	require.NoError(t, err)
	c, err = f.service.GetCartByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.Equal(dec("50.00")), "total %s", c.Total)
	require.Equal(t, 5, c.QuantityTotal)

	_, err = f.service.RemoveItem(ctx, 7, it.ID)
	require.NoError(t, err)
	c, err = f.service.GetCartByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.IsZero(), "total %s", c.Total)
	require.Zero(t, c.QuantityTotal)
	require.Empty(t, c.Items)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 3, UnitPrice: dec("10")})
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 2, Quantity: 4, UnitPrice: dec("15")})
	require.NoError(t, err)

	removed, err := f.service.RemoveItem(ctx, 7, a.ID)
	require.NoError(t, err)
	require.Equal(t, 3, removed.Quantity)

	c, err := f.repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.Equal(dec("60")))
	require.Equal(t, 4, c.QuantityTotal)

	_, err = f.service.RemoveItem(ctx, 7, a.ID)
	requireKind(t, err, apperror.KindNotFound, "Cart item not found")
}

func TestRemoveAllItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.service.RemoveAllItems(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 3, UnitPrice: dec("10")})
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 3, Quantity: 2, UnitPrice: dec("2.5")})
	require.NoError(t, err)

	removed, err := f.service.RemoveAllItems(ctx, 7)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	c, err := f.service.GetCartByUserID(ctx, 7)
	require.NoError(t, err)
	require.True(t, c.Total.IsZero())
	require.Zero(t, c.QuantityTotal)
	require.Empty(t, c.Items)

	_, err = f.service.RemoveAllItems(ctx, 8)
	requireKind(t, err, apperror.KindNotFound, "Cart not found")
}

func TestGetCartByUserID_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetCartByUserID(context.Background(), 0)
	requireKind(t, err, apperror.KindBadRequest, "The provided ID parameter is invalid")

	_, err = f.service.GetCartByUserID(context.Background(), 8)
	requireKind(t, err, apperror.KindNotFound, "Cart does not exist")
}

func TestListItems_AttachesProductSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("10")})
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, 7, AddItemInput{ProductID: 2, Quantity: 1, UnitPrice: dec("15")})
	require.NoError(t, err)

	items, err := f.service.ListItems(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Product)
	require.Equal(t, "leash.png", items[0].Product.Image)
	require.True(t, items[0].Product.IsActive)
	require.NotNil(t, items[1].Product)
	require.False(t, items[1].Product.IsActive)
	require.Empty(t, items[1].Product.Image)

	_, err = f.service.ListItems(ctx, 8)
	requireKind(t, err, apperror.KindNotFound, "Cart not found")
}

type brokenCatalog struct{ Catalog }

func (brokenCatalog) FindMany(context.Context, []int) (map[int]product.Product, error) {
	return nil, errors.New("catalog unavailable")
}

func TestListItems_DegradesWhenCatalogFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("10")})
	require.NoError(t, err)

	degraded := NewService(f.repo, brokenCatalog{f.service.catalog}, f.service.users, nil)
	items, err := degraded.ListItems(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Nil(t, items[0].Product)
}

func TestEnsureCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing, err := f.service.EnsureCart(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 1, existing.ID)

	created, err := f.service.EnsureCart(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, 8, created.UserID)
	require.True(t, created.Total.IsZero())

	again, err := f.service.EnsureCart(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)

	_, err = f.service.EnsureCart(ctx, 50)
	requireKind(t, err, apperror.KindNotFound, "User not found")
}

type failingTotals struct {
	*InMemoryRepository
}

func (failingTotals) UpdateTotals(context.Context, int, decimal.Decimal, int) error {
	return errors.New("disk full")
}

type failingTotalsStore struct {
	*InMemoryRepository
}

func (s failingTotalsStore) InTx(ctx context.Context, fn func(Repository) error) error {
	return s.InMemoryRepository.InTx(ctx, func(Repository) error {
		return fn(failingTotals{s.InMemoryRepository})
	})
}

func TestAddItem_RollsBackWhenTotalsFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := NewService(failingTotalsStore{f.repo}, f.service.catalog, f.service.users, nil)
	_, err := svc.AddItem(ctx, 7, AddItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("10")})
	requireKind(t, err, apperror.KindInternal, "error updating cart total")

	items, err := f.repo.ListItems(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, items, "line insert must be rolled back with the failed total write")
}

func TestConcurrentAddsKeepTotalsConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, pid := range []int{1, 2, 3} {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			_, _ = f.service.AddItem(ctx, 7, AddItemInput{ProductID: pid, Quantity: 2, UnitPrice: dec("1")})
		}(pid)
	}
	wg.Wait()

	c, err := f.service.GetCartByUserID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	require.True(t, c.Total.Equal(dec("6")))
	require.Equal(t, 6, c.QuantityTotal)
}
