package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/clickshop-backend/internal/database"
)

type PostgresRepository struct {
	db database.DBTX
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, shipping_address, city, province, postal_code, country, status, total, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING order_id
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	updateOrderTotalQuery = `UPDATE orders SET total = $2 WHERE order_id = $1`
	orderColumns          = `order_id, user_id, shipping_address, city, province, postal_code, country, status, total, date`
	getOrderQuery         = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY date DESC, order_id DESC`
	listOrderItemsQuery   = `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY id
	`
)

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Address, &o.City, &o.Province, &o.PostalCode, &o.Country, &o.Status, &o.Total, &o.Date)
	return o, err
}

func (r *PostgresRepository) Create(ctx context.Context, ord Order) (Order, error) {
	err := r.db.QueryRowContext(ctx, insertOrderQuery,
		ord.UserID, ord.Address, ord.City, ord.Province, ord.PostalCode, ord.Country, ord.Status, ord.Total, ord.Date,
	).Scan(&ord.ID)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	ord.Items = nil
	return ord, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	err := r.db.QueryRowContext(ctx, insertOrderItemQuery,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		return Item{}, fmt.Errorf("insert order item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) UpdateTotal(ctx context.Context, orderID int, total decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, updateOrderTotalQuery, orderID, total)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all orders with one query.
func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	index := make(map[int]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.db.QueryContext(ctx, listOrderItemsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}
