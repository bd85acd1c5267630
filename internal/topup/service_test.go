package topup

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lltsaorg/thiha-shop-app/internal/account"
	"github.com/lltsaorg/thiha-shop-app/internal/cache"
	"github.com/lltsaorg/thiha-shop-app/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopNotifier struct{}

func (noopNotifier) NotifyTopUpRequested(ctx context.Context, accountID int, amount int64) {}

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *recordingNotifier) NotifyTopUpRequested(ctx context.Context, accountID int, amount int64) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

// fakeRepository is an in-memory Account Store. Its ApproveAndCredit
// deliberately sleeps between the balance read and the balance write
// so that unserialized callers would lose updates.
type fakeRepository struct {
	mu       sync.Mutex
	requests map[string]*TopUpRequest
	balances map[int]int64
	cycles   int // completed read-then-write credit cycles
	delay    time.Duration
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		requests: make(map[string]*TopUpRequest),
		balances: make(map[int]int64),
		delay:    time.Millisecond,
	}
}

func (f *fakeRepository) addRequest(id string, accountID int, amount int64) {
	f.requests[id] = &TopUpRequest{ID: id, AccountID: accountID, Amount: amount, CreatedAt: time.Now()}
}

func (f *fakeRepository) Create(ctx context.Context, accountID int, amount int64) (*TopUpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("req-%d", len(f.requests)+1)
	req := &TopUpRequest{ID: id, AccountID: accountID, Amount: amount, CreatedAt: time.Now()}
	f.requests[id] = req
	return req, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*TopUpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID int, limit, offset int) ([]TopUpRequest, error) {
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, status string) ([]TopUpRequest, error) {
	return nil, nil
}

func (f *fakeRepository) ApproveAndCredit(ctx context.Context, id string) (int64, bool, error) {
	f.mu.Lock()
	req, ok := f.requests[id]
	if !ok {
		f.mu.Unlock()
		return 0, false, ErrNotFound
	}
	if req.Approved {
		f.mu.Unlock()
		return 0, true, nil
	}
	current := f.balances[req.AccountID]
	f.mu.Unlock()

	// The unlocked window between read and write is what the per-key
	// queue must protect.
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	req.Approved = true
	req.ApprovedAt = &now
	f.balances[req.AccountID] = current + req.Amount
	f.cycles++
	return current + req.Amount, false, nil
}

func newTestService(repo Repository, maxPending int) (Service, *cache.Cache[account.BalanceSnapshot]) {
	balances := cache.New[account.BalanceSnapshot]()
	svc := NewService(repo, queue.NewRegistry(), maxPending, balances, noopNotifier{})
	return svc, balances
}

func TestApproveNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(repo, 100)

	_, err := svc.Approve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveCreditsOnce(t *testing.T) {
	repo := newFakeRepository()
	repo.addRequest("req-1", 7, 1000)
	svc, _ := newTestService(repo, 100)

	result, err := svc.Approve(context.Background(), "req-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Already)
	assert.Equal(t, int64(1000), result.Balance)
	assert.Equal(t, int64(1000), repo.balances[7])
}

func TestApproveIdempotent(t *testing.T) {
	repo := newFakeRepository()
	repo.addRequest("req-1", 7, 1000)
	svc, _ := newTestService(repo, 100)

	first, err := svc.Approve(context.Background(), "req-1")
	require.NoError(t, err)
	require.False(t, first.Already)

	second, err := svc.Approve(context.Background(), "req-1")
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.Already)

	// Credited exactly once, no additional write cycles.
	assert.Equal(t, int64(1000), repo.balances[7])
	assert.Equal(t, 1, repo.cycles)
}

func TestApproveConcurrentNoLostUpdates(t *testing.T) {
	repo := newFakeRepository()
	const n = 30
	for i := 0; i < n; i++ {
		repo.addRequest(fmt.Sprintf("req-%d", i), 7, 1000)
	}
	svc, _ := newTestService(repo, 100)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(context.Background(), fmt.Sprintf("req-%d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 30 concurrent approvals of 1000 each: every read-then-write cycle
	// saw the previous write, so nothing was lost.
	assert.Equal(t, int64(30000), repo.balances[7])
	assert.Equal(t, n, repo.cycles)
}

func TestApproveConcurrentSameRequest(t *testing.T) {
	repo := newFakeRepository()
	repo.addRequest("req-1", 7, 1000)
	svc, _ := newTestService(repo, 100)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(context.Background(), "req-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Double-submitted approvals race past the unqueued pre-check, but
	// the re-check inside the queued task credits exactly once.
	assert.Equal(t, int64(1000), repo.balances[7])
	assert.Equal(t, 1, repo.cycles)
}

func TestApproveInvalidatesBalanceCache(t *testing.T) {
	repo := newFakeRepository()
	repo.addRequest("req-1", 7, 1000)
	svc, balances := newTestService(repo, 100)

	// Stale display snapshot from before the credit.
	balances.Set(account.BalanceKey(7), account.BalanceSnapshot{Exists: true, Balance: 0}, time.Minute)

	_, err := svc.Approve(context.Background(), "req-1")
	require.NoError(t, err)

	_, ok := balances.Get(account.BalanceKey(7))
	assert.False(t, ok, "successful credit must invalidate the cached balance")
}

func TestApproveCapacityExceeded(t *testing.T) {
	repo := newFakeRepository()
	repo.delay = 50 * time.Millisecond
	repo.addRequest("req-0", 7, 1000)
	repo.addRequest("req-1", 7, 1000)
	repo.addRequest("req-2", 7, 1000)
	repo.addRequest("req-3", 7, 1000)

	svc, _ := newTestService(repo, 2)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(context.Background(), fmt.Sprintf("req-%d", i))
			assert.NoError(t, err)
		}()
	}

	// Let one task start running and two queue up behind it.
	time.Sleep(20 * time.Millisecond)

	_, err := svc.Approve(context.Background(), "req-3")
	assert.ErrorIs(t, err, queue.ErrCapacityExceeded)

	wg.Wait()

	// The rejection did not disturb the three accepted credits.
	assert.Equal(t, int64(3000), repo.balances[7])
}

func TestCreateNotifiesAdmins(t *testing.T) {
	repo := newFakeRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, queue.NewRegistry(), 100, cache.New[account.BalanceSnapshot](), notifier)

	req, err := svc.Create(context.Background(), 7, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), req.Amount)
	assert.Equal(t, 1, notifier.calls)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(repo, 100)

	_, err := svc.Create(context.Background(), 7, 0)
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), 7, -100)
	assert.Error(t, err)
}
