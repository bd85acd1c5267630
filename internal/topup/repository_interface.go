package topup

import "context"

type Repository interface {
	Create(ctx context.Context, accountID int, amount int64) (*TopUpRequest, error)
	FindByID(ctx context.Context, id string) (*TopUpRequest, error)
	ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]TopUpRequest, error)
	List(ctx context.Context, status string) ([]TopUpRequest, error)
	ApproveAndCredit(ctx context.Context, id string) (balance int64, already bool, err error)
}
