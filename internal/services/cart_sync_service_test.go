package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRemoteCart is a mock implementation of RemoteCart
type MockRemoteCart struct {
	mock.Mock
}

var _ RemoteCart = (*MockRemoteCart)(nil)

func (m *MockRemoteCart) UpdateQuantity(ctx context.Context, tenantID string, customerID uuid.UUID, productID, size string, quantity int) error {
	args := m.Called(ctx, tenantID, customerID, productID, size, quantity)
	return args.Error(0)
}

func TestCartSyncService_EnqueueCoalescesByLine(t *testing.T) {
	customerID := uuid.New()
	mockRemote := new(MockRemoteCart)
	// Only the latest quantity for the line reaches the remote cart.
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 3).Return(nil).Once()

	service := NewCartSyncService(mockRemote, testLogger())
	service.Enqueue("tenant-1", customerID, "P1", "M", 1)
	service.Enqueue("tenant-1", customerID, "P1", "M", 2)
	service.Enqueue("tenant-1", customerID, "P1", "M", 3)

	assert.Equal(t, 1, service.PendingCount())

	pushed, failed := service.Flush(context.Background())
	assert.Equal(t, 1, pushed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, service.PendingCount())
	mockRemote.AssertExpectations(t)
}

func TestCartSyncService_DistinctSizesAreSeparateLines(t *testing.T) {
	customerID := uuid.New()
	mockRemote := new(MockRemoteCart)
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 2).Return(nil).Once()
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "L", 1).Return(nil).Once()

	service := NewCartSyncService(mockRemote, testLogger())
	service.Enqueue("tenant-1", customerID, "P1", "M", 2)
	service.Enqueue("tenant-1", customerID, "P1", "L", 1)

	assert.Equal(t, 2, service.PendingCount())

	pushed, failed := service.Flush(context.Background())
	assert.Equal(t, 2, pushed)
	assert.Equal(t, 0, failed)
	mockRemote.AssertExpectations(t)
}

func TestCartSyncService_FailedPushIsReenqueued(t *testing.T) {
	customerID := uuid.New()
	mockRemote := new(MockRemoteCart)
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 2).
		Return(errors.New("connection refused")).Once()
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 2).
		Return(nil).Once()

	service := NewCartSyncService(mockRemote, testLogger())
	service.Enqueue("tenant-1", customerID, "P1", "M", 2)

	pushed, failed := service.Flush(context.Background())
	assert.Equal(t, 0, pushed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, service.PendingCount())

	pushed, failed = service.Flush(context.Background())
	assert.Equal(t, 1, pushed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, service.PendingCount())
	mockRemote.AssertExpectations(t)
}

func TestCartSyncService_DroppedAfterMaxAttempts(t *testing.T) {
	customerID := uuid.New()
	mockRemote := new(MockRemoteCart)
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 2).
		Return(errors.New("unavailable")).Times(defaultMaxSyncAttempts)

	service := NewCartSyncService(mockRemote, testLogger())
	service.Enqueue("tenant-1", customerID, "P1", "M", 2)

	for i := 0; i < defaultMaxSyncAttempts; i++ {
		service.Flush(context.Background())
	}

	// The retry budget is exhausted; the line is gone for good.
	assert.Equal(t, 0, service.PendingCount())
	pushed, failed := service.Flush(context.Background())
	assert.Equal(t, 0, pushed)
	assert.Equal(t, 0, failed)
	mockRemote.AssertExpectations(t)
}

func TestCartSyncService_NewerQuantityResetsRetryBudget(t *testing.T) {
	customerID := uuid.New()
	mockRemote := new(MockRemoteCart)
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 2).
		Return(errors.New("unavailable")).Once()
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerID, "P1", "M", 5).
		Return(nil).Once()

	service := NewCartSyncService(mockRemote, testLogger())
	service.Enqueue("tenant-1", customerID, "P1", "M", 2)
	service.Flush(context.Background())

	// The shopper edits again before the retry fires; the stale retry is
	// replaced by the new absolute quantity.
	service.Enqueue("tenant-1", customerID, "P1", "M", 5)
	assert.Equal(t, 1, service.PendingCount())

	pushed, failed := service.Flush(context.Background())
	assert.Equal(t, 1, pushed)
	assert.Equal(t, 0, failed)
	mockRemote.AssertExpectations(t)
}

func TestCartSyncService_DropCustomer(t *testing.T) {
	customerA := uuid.New()
	customerB := uuid.New()
	mockRemote := new(MockRemoteCart)
	mockRemote.On("UpdateQuantity", mock.Anything, "tenant-1", customerB, "P2", "S", 1).Return(nil).Once()

	service := NewCartSyncService(mockRemote, testLogger())
	service.Enqueue("tenant-1", customerA, "P1", "M", 2)
	service.Enqueue("tenant-1", customerA, "P1", "L", 1)
	service.Enqueue("tenant-1", customerB, "P2", "S", 1)

	service.DropCustomer("tenant-1", customerA)
	assert.Equal(t, 1, service.PendingCount())

	pushed, _ := service.Flush(context.Background())
	assert.Equal(t, 1, pushed)
	mockRemote.AssertExpectations(t)
}

func TestCartSyncService_WakeSignalOnEnqueue(t *testing.T) {
	service := NewCartSyncService(new(MockRemoteCart), testLogger())
	service.Enqueue("tenant-1", uuid.New(), "P1", "M", 1)

	select {
	case <-service.Wake():
	default:
		t.Fatal("expected a wake signal after enqueue")
	}
}
