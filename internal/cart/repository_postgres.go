package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/clickshop-backend/internal/database"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db database.DBTX
}

const (
	getCartByUserQuery = `
		SELECT cart_id, user_id, total, quantity_total
		FROM carts
		WHERE user_id = $1
	`
	lockCartByUserQuery = getCartByUserQuery + ` FOR UPDATE`
	insertCartQuery     = `
		INSERT INTO carts (user_id)
		VALUES ($1)
		RETURNING cart_id, user_id, total, quantity_total
	`
	updateCartTotalsQuery = `
		UPDATE carts SET total = $2, quantity_total = $3
		WHERE cart_id = $1
	`
	listItemsQuery = `
		SELECT cart_item_id, cart_id, product_id, quantity, unit_price, subtotal
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY cart_item_id
	`
	getItemQuery = `
		SELECT cart_item_id, cart_id, product_id, quantity, unit_price, subtotal
		FROM cart_items
		WHERE cart_id = $1 AND cart_item_id = $2
	`
	findItemByProductQuery = `
		SELECT cart_item_id, cart_id, product_id, quantity, unit_price, subtotal
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`
	insertItemQuery = `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING cart_item_id
	`
	updateItemQuery = `
		UPDATE cart_items SET quantity = $3, subtotal = $4
		WHERE cart_id = $1 AND cart_item_id = $2
	`
	deleteItemQuery  = `DELETE FROM cart_items WHERE cart_id = $1 AND cart_item_id = $2`
	deleteItemsQuery = `DELETE FROM cart_items WHERE cart_id = $1`
)

// NewPostgresRepository returns a repository over db, which may be a pool or
// an open transaction.
func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCart(row rowScanner) (Cart, error) {
	var c Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.Total, &c.QuantityTotal); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func scanItem(row rowScanner) (Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepository) getCart(ctx context.Context, query string, userID int) (Cart, error) {
	c, err := scanCart(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("select cart: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int) (Cart, error) {
	return r.getCart(ctx, getCartByUserQuery, userID)
}

func (r *PostgresRepository) LockByUserID(ctx context.Context, userID int) (Cart, error) {
	return r.getCart(ctx, lockCartByUserQuery, userID)
}

func (r *PostgresRepository) Create(ctx context.Context, userID int) (Cart, error) {
	c, err := scanCart(r.db.QueryRowContext(ctx, insertCartQuery, userID))
	if err != nil {
		return Cart{}, fmt.Errorf("insert cart: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) UpdateTotals(ctx context.Context, cartID int, total decimal.Decimal, quantity int) error {
	res, err := r.db.ExecContext(ctx, updateCartTotalsQuery, cartID, total, quantity)
	if err != nil {
		return fmt.Errorf("update cart totals: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, cartID int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, listItemsQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) getItem(ctx context.Context, query string, args ...any) (Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("select cart item: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, cartID, itemID int) (Item, error) {
	return r.getItem(ctx, getItemQuery, cartID, itemID)
}

func (r *PostgresRepository) FindItemByProduct(ctx context.Context, cartID, productID int) (Item, error) {
	return r.getItem(ctx, findItemByProductQuery, cartID, productID)
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	err := r.db.QueryRowContext(ctx, insertItemQuery,
		item.CartID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Item{}, ErrDuplicateItem
		}
		return Item{}, fmt.Errorf("insert cart item: %w", err)
	}
	item.Product = nil
	return item, nil
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item Item) (Item, error) {
	res, err := r.db.ExecContext(ctx, updateItemQuery, item.CartID, item.ID, item.Quantity, item.Subtotal)
	if err != nil {
		return Item{}, fmt.Errorf("update cart item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, cartID, itemID int) error {
	res, err := r.db.ExecContext(ctx, deleteItemQuery, cartID, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteItems(ctx context.Context, cartID int) error {
	if _, err := r.db.ExecContext(ctx, deleteItemsQuery, cartID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return nil
}

// PostgresStore runs cart units of work in database transactions.
type PostgresStore struct {
	*PostgresRepository
	pool *sql.DB
}

func NewPostgresStore(pool *sql.DB) *PostgresStore {
	return &PostgresStore{PostgresRepository: NewPostgresRepository(pool), pool: pool}
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(Repository) error) error {
	return database.WithTx(ctx, s.pool, func(tx *sql.Tx) error {
		return fn(NewPostgresRepository(tx))
	})
}
