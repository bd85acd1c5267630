package topup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lltsaorg/thiha-shop-app/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, accountID int, amount int64) (*TopUpRequest, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TopUpRequest), args.Error(1)
}

func (m *MockService) ListMine(ctx context.Context, accountID int, limit, offset int) ([]TopUpRequest, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TopUpRequest), args.Error(1)
}

func (m *MockService) List(ctx context.Context, status string) ([]TopUpRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TopUpRequest), args.Error(1)
}

func (m *MockService) Approve(ctx context.Context, id string) (ApproveResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ApproveResult), args.Error(1)
}

func performApprove(t *testing.T, svc Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	h := NewHandler(svc)
	router.POST("/admin/topup-requests/approve", h.Approve)

	req := httptest.NewRequest("POST", "/admin/topup-requests/approve", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestApproveHandlerSuccess(t *testing.T) {
	svc := new(MockService)
	svc.On("Approve", mock.Anything, "req-1").Return(ApproveResult{Success: true, Balance: 1500}, nil)

	w := performApprove(t, svc, `{"id":"req-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var result ApproveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, int64(1500), result.Balance)
}

func TestApproveHandlerAlready(t *testing.T) {
	svc := new(MockService)
	svc.On("Approve", mock.Anything, "req-1").Return(ApproveResult{Success: true, Already: true}, nil)

	w := performApprove(t, svc, `{"id":"req-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"already":true`)
}

func TestApproveHandlerNotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("Approve", mock.Anything, "missing").Return(ApproveResult{}, ErrNotFound)

	w := performApprove(t, svc, `{"id":"missing"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApproveHandlerCapacity(t *testing.T) {
	svc := new(MockService)
	svc.On("Approve", mock.Anything, "req-1").Return(ApproveResult{}, queue.ErrCapacityExceeded)

	w := performApprove(t, svc, `{"id":"req-1"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestApproveHandlerMissingID(t *testing.T) {
	svc := new(MockService)

	w := performApprove(t, svc, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Approve")
}
