package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pricewatch/backend/internal/fetcher"
)

// MockScheduler implements a mock scheduler for handler tests
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) RunPollNow() {
	m.Called()
}

func (m *MockScheduler) RunDeliveryNow() {
	m.Called()
}

func (m *MockScheduler) GetNextPollRun() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockScheduler) GetNextDeliveryRun() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// MockPollStatus implements a mock poll health source for handler tests
type MockPollStatus struct {
	mock.Mock
}

func (m *MockPollStatus) GetHealthStatus(ctx context.Context, nextRunTime time.Time) fetcher.HealthStatus {
	args := m.Called(ctx, nextRunTime)
	return args.Get(0).(fetcher.HealthStatus)
}

func TestOpsHandler_RunPoll(t *testing.T) {
	mockScheduler := new(MockScheduler)
	handler := NewOpsHandler(mockScheduler, new(MockPollStatus))

	mockScheduler.On("RunPollNow").Return()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/poll/run", nil)
	rr := httptest.NewRecorder()
	handler.RunPoll(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Contains(t, rr.Body.String(), "Price poll started")
	mockScheduler.AssertExpectations(t)
}

func TestOpsHandler_RunDelivery(t *testing.T) {
	mockScheduler := new(MockScheduler)
	handler := NewOpsHandler(mockScheduler, new(MockPollStatus))

	mockScheduler.On("RunDeliveryNow").Return()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/delivery/run", nil)
	rr := httptest.NewRecorder()
	handler.RunDelivery(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Contains(t, rr.Body.String(), "Alert delivery started")
	mockScheduler.AssertExpectations(t)
}

func TestOpsHandler_PollStatus(t *testing.T) {
	mockScheduler := new(MockScheduler)
	mockPoll := new(MockPollStatus)
	handler := NewOpsHandler(mockScheduler, mockPoll)

	nextRun := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mockScheduler.On("GetNextPollRun").Return(nextRun)
	mockPoll.On("GetHealthStatus", mock.Anything, nextRun).Return(fetcher.HealthStatus{
		Healthy:    true,
		TotalItems: 3,
		Message:    "Poller is operating normally",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/poll/status", nil)
	rr := httptest.NewRecorder()
	handler.PollStatus(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"healthy":true`)
	assert.Contains(t, rr.Body.String(), "Poller is operating normally")
	mockScheduler.AssertExpectations(t)
	mockPoll.AssertExpectations(t)
}

func TestOpsHandler_PollStatus_Unhealthy(t *testing.T) {
	mockScheduler := new(MockScheduler)
	mockPoll := new(MockPollStatus)
	handler := NewOpsHandler(mockScheduler, mockPoll)

	mockScheduler.On("GetNextPollRun").Return(time.Time{})
	mockPoll.On("GetHealthStatus", mock.Anything, time.Time{}).Return(fetcher.HealthStatus{
		Healthy:        false,
		TotalItems:     4,
		HealthyItems:   1,
		UnhealthyItems: []string{"B0AAAAAAA1", "B0BBBBBBB2", "B0CCCCCCC3"},
		Message:        "Some products are failing to fetch",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/poll/status", nil)
	rr := httptest.NewRecorder()
	handler.PollStatus(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"healthy":false`)
	mockScheduler.AssertExpectations(t)
	mockPoll.AssertExpectations(t)
}
