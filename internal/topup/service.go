package topup

import (
	"context"
	"errors"
	"fmt"

	"github.com/lltsaorg/thiha-shop-app/internal/account"
	"github.com/lltsaorg/thiha-shop-app/internal/cache"
	"github.com/lltsaorg/thiha-shop-app/internal/metrics"
	"github.com/lltsaorg/thiha-shop-app/internal/queue"
)

// Notifier informs admins about freshly created requests. Delivery is
// best-effort: implementations log failures and never return them.
type Notifier interface {
	NotifyTopUpRequested(ctx context.Context, accountID int, amount int64)
}

type Service interface {
	Create(ctx context.Context, accountID int, amount int64) (*TopUpRequest, error)
	ListMine(ctx context.Context, accountID int, limit, offset int) ([]TopUpRequest, error)
	List(ctx context.Context, status string) ([]TopUpRequest, error)
	Approve(ctx context.Context, id string) (ApproveResult, error)
}

type service struct {
	repo       Repository
	queues     *queue.Registry
	maxPending int
	balances   *cache.Cache[account.BalanceSnapshot]
	notifier   Notifier
}

func NewService(
	repo Repository,
	queues *queue.Registry,
	maxPending int,
	balances *cache.Cache[account.BalanceSnapshot],
	notifier Notifier,
) Service {
	return &service{
		repo:       repo,
		queues:     queues,
		maxPending: maxPending,
		balances:   balances,
		notifier:   notifier,
	}
}

// accountQueueName keys balance mutations so that all of them for one
// account, top-up credits and purchase debits alike, share a queue.
func accountQueueName(accountID int) string {
	return fmt.Sprintf("account:%d", accountID)
}

func (s *service) Create(ctx context.Context, accountID int, amount int64) (*TopUpRequest, error) {
	if amount <= 0 {
		return nil, errors.New("top-up amount must be positive")
	}

	req, err := s.repo.Create(ctx, accountID, amount)
	if err != nil {
		return nil, err
	}

	// Best-effort: a notification failure never fails the request.
	s.notifier.NotifyTopUpRequested(ctx, accountID, amount)

	return req, nil
}

func (s *service) ListMine(ctx context.Context, accountID int, limit, offset int) ([]TopUpRequest, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

func (s *service) List(ctx context.Context, status string) ([]TopUpRequest, error) {
	return s.repo.List(ctx, status)
}

// Approve credits the requested amount exactly once. The credit runs
// as a single task on the owning account's queue, so it can never
// interleave with a purchase debit or another approval for the same
// account. A second approval of the same request reports prior success
// via Already without writing anything.
func (s *service) Approve(ctx context.Context, id string) (ApproveResult, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordTopUpApproval("not_found")
		}
		return ApproveResult{}, err
	}

	if req.Approved {
		metrics.RecordTopUpApproval("already")
		return ApproveResult{Success: true, Already: true}, nil
	}

	q := s.queues.Get(accountQueueName(req.AccountID), 1, s.maxPending)

	var result ApproveResult
	err = q.Add(func() error {
		// The approved flag is re-checked inside the transaction: two
		// concurrent approvals of the same request both reach here, and
		// only the first one credits.
		balance, already, err := s.repo.ApproveAndCredit(ctx, id)
		if err != nil {
			return err
		}
		if already {
			result = ApproveResult{Success: true, Already: true}
			return nil
		}

		s.balances.Delete(account.BalanceKey(req.AccountID))
		result = ApproveResult{Success: true, Balance: balance}
		return nil
	})
	if err != nil {
		if errors.Is(err, queue.ErrCapacityExceeded) {
			metrics.RecordQueueRejection()
			metrics.RecordTopUpApproval("capacity")
		} else {
			metrics.RecordTopUpApproval("error")
		}
		return ApproveResult{}, err
	}

	if result.Already {
		metrics.RecordTopUpApproval("already")
	} else {
		metrics.RecordTopUpApproval("approved")
	}
	return result, nil
}
