package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("product not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	products := []Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT id, name, price, active, created_at, updated_at
		 FROM products
		 WHERE active = TRUE
		 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresRepository) Create(ctx context.Context, name string, price int64) (*Product, error) {
	p := &Product{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO products (name, price)
		 VALUES ($1, $2)
		 RETURNING id, name, price, active, created_at, updated_at`,
		name, price,
	).StructScan(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, name string, price int64) (*Product, error) {
	p := &Product{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE products
		 SET name = $1, price = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING id, name, price, active, created_at, updated_at`,
		name, price, id,
	).StructScan(p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
