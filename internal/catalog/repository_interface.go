package catalog

import "context"

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, name string, price int64) (*Product, error)
	Update(ctx context.Context, id int, name string, price int64) (*Product, error)
}
