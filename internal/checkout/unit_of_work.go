package checkout

import (
	"context"
	"database/sql"

	"github.com/wichananm65/clickshop-backend/internal/cart"
	"github.com/wichananm65/clickshop-backend/internal/database"
	"github.com/wichananm65/clickshop-backend/internal/order"
)

// UnitOfWork runs fn with cart and order repositories that commit or roll
// back together.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(carts cart.Repository, orders order.Repository) error) error
}

type PostgresUnitOfWork struct {
	db *sql.DB
}

func NewPostgresUnitOfWork(db *sql.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

func (u *PostgresUnitOfWork) InTx(ctx context.Context, fn func(cart.Repository, order.Repository) error) error {
	return database.WithTx(ctx, u.db, func(tx *sql.Tx) error {
		return fn(cart.NewPostgresRepository(tx), order.NewPostgresRepository(tx))
	})
}

// MemoryUnitOfWork pairs the in-memory repositories. It is serialized with
// the cart store's own transactions and restores both on failure.
type MemoryUnitOfWork struct {
	carts  *cart.InMemoryRepository
	orders *order.InMemoryRepository
}

func NewMemoryUnitOfWork(carts *cart.InMemoryRepository, orders *order.InMemoryRepository) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{carts: carts, orders: orders}
}

func (u *MemoryUnitOfWork) InTx(ctx context.Context, fn func(cart.Repository, order.Repository) error) error {
	return u.carts.InTx(ctx, func(carts cart.Repository) error {
		restore := u.orders.Snapshot()
		if err := fn(carts, u.orders); err != nil {
			restore()
			return err
		}
		return nil
	})
}
