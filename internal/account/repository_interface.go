package account

import "context"

type Repository interface {
	Create(ctx context.Context, phone string) (*Account, error)
	FindByID(ctx context.Context, id int) (*Account, error)
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
}
