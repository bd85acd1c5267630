package purchase

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUnknownAccount      = errors.New("unknown account")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Debit re-reads the balance under a row lock, refuses to go negative,
// appends one transaction record per line and persists the new balance
// in a single database transaction. Records and balance can never be
// observed apart.
func (r *PostgresRepository) Debit(ctx context.Context, accountID int, items []Item, grandTotal int64) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowxContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		accountID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUnknownAccount
		}
		return 0, err
	}

	after := balance - grandTotal
	if after < 0 {
		// Checked under the lock so concurrent purchases cannot both
		// pass a stale sufficiency check.
		return 0, ErrInsufficientBalance
	}

	for _, it := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (account_id, product_id, quantity, total)
			 VALUES ($1, $2, $3, $4)`,
			accountID, it.ProductID, it.Quantity, it.Total,
		)
		if err != nil {
			return 0, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		after, accountID,
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return after, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	txs := []Transaction{}
	err := r.db.SelectContext(ctx, &txs,
		`SELECT id, account_id, product_id, quantity, total, created_at
		 FROM transactions
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
