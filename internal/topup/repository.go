package topup

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound       = errors.New("top-up request not found")
	ErrUnknownAccount = errors.New("unknown account")
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusAll      = "all"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, accountID int, amount int64) (*TopUpRequest, error) {
	req := &TopUpRequest{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO topup_requests (id, account_id, amount)
		 VALUES ($1, $2, $3)
		 RETURNING id, account_id, amount, approved, created_at, approved_at`,
		uuid.NewString(), accountID, amount,
	).StructScan(req)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*TopUpRequest, error) {
	req := &TopUpRequest{}
	err := r.db.GetContext(ctx, req,
		`SELECT id, account_id, amount, approved, created_at, approved_at
		 FROM topup_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]TopUpRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	reqs := []TopUpRequest{}
	err := r.db.SelectContext(ctx, &reqs,
		`SELECT id, account_id, amount, approved, created_at, approved_at
		 FROM topup_requests
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *PostgresRepository) List(ctx context.Context, status string) ([]TopUpRequest, error) {
	query := `SELECT id, account_id, amount, approved, created_at, approved_at
		 FROM topup_requests`
	switch status {
	case StatusPending:
		query += ` WHERE approved = FALSE`
	case StatusApproved:
		query += ` WHERE approved = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	reqs := []TopUpRequest{}
	if err := r.db.SelectContext(ctx, &reqs, query); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ApproveAndCredit marks the request approved and credits the owning
// account in a single database transaction, so the approved flag and
// the credited balance can never be observed apart. The balance is
// re-read under a row lock here, never taken from the cache.
func (r *PostgresRepository) ApproveAndCredit(ctx context.Context, id string) (int64, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	req := &TopUpRequest{}
	err = tx.QueryRowxContext(ctx,
		`SELECT id, account_id, amount, approved, created_at, approved_at
		 FROM topup_requests
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	).StructScan(req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, err
	}

	if req.Approved {
		return 0, true, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE topup_requests
		 SET approved = TRUE, approved_at = NOW()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, false, err
	}

	var balance int64
	err = tx.QueryRowxContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		req.AccountID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrUnknownAccount
		}
		return 0, false, err
	}

	newBalance := balance + req.Amount

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts
		 SET balance = $1, last_topped_up_at = NOW(), updated_at = NOW()
		 WHERE id = $2`,
		newBalance, req.AccountID,
	)
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return newBalance, false, nil
}
