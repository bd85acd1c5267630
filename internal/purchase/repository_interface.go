package purchase

import "context"

type Repository interface {
	Debit(ctx context.Context, accountID int, items []Item, grandTotal int64) (balanceAfter int64, err error)
	ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]Transaction, error)
}
