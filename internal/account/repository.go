package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/lltsaorg/thiha-shop-app/internal/db"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrPhoneExists = errors.New("phone already registered")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create registers a new account with a zero balance.
func (r *PostgresRepository) Create(ctx context.Context, phone string) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO accounts (phone)
		 VALUES ($1)
		 RETURNING id, phone, balance, last_topped_up_at, created_at, updated_at`,
		phone,
	).StructScan(a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*Account, error) {
	a := &Account{}
	err := r.db.GetContext(ctx, a,
		`SELECT id, phone, balance, last_topped_up_at, created_at, updated_at
		 FROM accounts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (*Account, error) {
	a := &Account{}
	err := r.db.GetContext(ctx, a,
		`SELECT id, phone, balance, last_topped_up_at, created_at, updated_at
		 FROM accounts WHERE phone = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE phone = $1)`, phone)
}
