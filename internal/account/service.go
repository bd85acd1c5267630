package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lltsaorg/thiha-shop-app/internal/auth"
	"github.com/lltsaorg/thiha-shop-app/internal/cache"
	"github.com/lltsaorg/thiha-shop-app/internal/metrics"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// BalanceKey is the cache key for an account's balance snapshot.
// Mutating transactions delete this key after a successful write.
func BalanceKey(accountID int) string {
	return fmt.Sprintf("bal:%d", accountID)
}

type Service interface {
	Register(ctx context.Context, phone string) (*Account, string, string, error)
	Login(ctx context.Context, phone string) (*Account, string, string, error)
	GetByID(ctx context.Context, accountID int) (*Account, error)
	Balance(ctx context.Context, accountID int) (BalanceSnapshot, error)
}

type service struct {
	repo      Repository
	balances  *cache.Cache[BalanceSnapshot]
	cacheTTL  time.Duration
	jwtSecret string
}

func NewService(repo Repository, balances *cache.Cache[BalanceSnapshot], cacheTTL time.Duration, jwtSecret string) Service {
	return &service{
		repo:      repo,
		balances:  balances,
		cacheTTL:  cacheTTL,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, phone string) (*Account, string, string, error) {
	exists, err := s.repo.PhoneExists(ctx, phone)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrPhoneExists
	}

	a, err := s.repo.Create(ctx, phone)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		a.ID,
		a.Phone,
		auth.RoleMember,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return a, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, phone string) (*Account, string, string, error) {
	a, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		a.ID,
		a.Phone,
		auth.RoleMember,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return a, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, accountID int) (*Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// Balance serves the display read path through the cache. A missing
// account is reported as a non-existent snapshot rather than an error,
// and is not cached against future registration reads for long: the
// snapshot carries Exists=false with the same TTL.
func (s *service) Balance(ctx context.Context, accountID int) (BalanceSnapshot, error) {
	key := BalanceKey(accountID)

	if _, ok := s.balances.Get(key); ok {
		metrics.RecordBalanceCacheHit()
	} else {
		metrics.RecordBalanceCacheMiss()
	}

	return s.balances.ReadThrough(key, s.cacheTTL, func() (BalanceSnapshot, error) {
		a, err := s.repo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return BalanceSnapshot{Exists: false}, nil
			}
			return BalanceSnapshot{}, err
		}
		return BalanceSnapshot{
			Exists:         true,
			Balance:        a.Balance,
			LastToppedUpAt: a.LastToppedUpAt,
		}, nil
	})
}
