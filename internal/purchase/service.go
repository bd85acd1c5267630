package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/lltsaorg/thiha-shop-app/internal/account"
	"github.com/lltsaorg/thiha-shop-app/internal/cache"
	"github.com/lltsaorg/thiha-shop-app/internal/metrics"
	"github.com/lltsaorg/thiha-shop-app/internal/queue"
)

var ErrInvalidItems = errors.New("invalid order items")

type Service interface {
	Purchase(ctx context.Context, accountID int, items []Item) (PurchaseResult, error)
	ListMine(ctx context.Context, accountID int, limit, offset int) ([]Transaction, error)
}

type service struct {
	repo        Repository
	accountRepo account.Repository
	queues      *queue.Registry
	maxPending  int
	balances    *cache.Cache[account.BalanceSnapshot]
}

func NewService(
	repo Repository,
	accountRepo account.Repository,
	queues *queue.Registry,
	maxPending int,
	balances *cache.Cache[account.BalanceSnapshot],
) Service {
	return &service{
		repo:        repo,
		accountRepo: accountRepo,
		queues:      queues,
		maxPending:  maxPending,
		balances:    balances,
	}
}

func accountQueueName(accountID int) string {
	return fmt.Sprintf("account:%d", accountID)
}

// Purchase debits the account by the order's grand total. Line totals
// are trusted from the caller; the sufficiency check runs inside the
// account's serialization queue against a fresh balance read, so two
// concurrent purchases cannot both spend the same funds.
func (s *service) Purchase(ctx context.Context, accountID int, items []Item) (PurchaseResult, error) {
	if len(items) == 0 {
		return PurchaseResult{}, ErrInvalidItems
	}

	var grandTotal int64
	for _, it := range items {
		if it.Quantity <= 0 || it.Total < 0 {
			return PurchaseResult{}, ErrInvalidItems
		}
		grandTotal += it.Total
	}
	if grandTotal < 0 {
		// int64 overflow on absurd inputs.
		return PurchaseResult{}, ErrInvalidItems
	}

	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			metrics.RecordPurchase("unknown_account")
			return PurchaseResult{}, ErrUnknownAccount
		}
		return PurchaseResult{}, err
	}

	q := s.queues.Get(accountQueueName(accountID), 1, s.maxPending)

	var result PurchaseResult
	err := q.Add(func() error {
		after, err := s.repo.Debit(ctx, accountID, items, grandTotal)
		if err != nil {
			return err
		}

		s.balances.Delete(account.BalanceKey(accountID))
		result = PurchaseResult{OK: true, Total: grandTotal, BalanceAfter: after}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrCapacityExceeded):
			metrics.RecordQueueRejection()
			metrics.RecordPurchase("capacity")
		case errors.Is(err, ErrInsufficientBalance):
			metrics.RecordPurchase("insufficient_balance")
		default:
			metrics.RecordPurchase("error")
		}
		return PurchaseResult{}, err
	}

	metrics.RecordPurchase("ok")
	return result, nil
}

func (s *service) ListMine(ctx context.Context, accountID int, limit, offset int) ([]Transaction, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}
