package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getProductByIDQuery = `
		SELECT product_id, product_name, price, stock, is_active
		FROM products
		WHERE product_id = $1
	`
	listProductsByIDsQuery = `
		SELECT product_id, product_name, price, stock, is_active
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)
	`
	primaryImageQuery = `
		SELECT product_id, url, position
		FROM product_images
		WHERE product_id = $1
		ORDER BY position, image_id
		LIMIT 1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.IsActive); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) PrimaryImage(ctx context.Context, productID int) (Image, error) {
	var img Image
	err := r.db.QueryRowContext(ctx, primaryImageQuery, productID).Scan(&img.ProductID, &img.URL, &img.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Image{}, ErrNoImage
		}
		return Image{}, fmt.Errorf("select product image: %w", err)
	}
	return img, nil
}
