package mocks

import (
	"context"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockRepository has no AppendEventTx, so the service takes the two-step path.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	sh, _ := args.Get(0).(*models.Shipment)
	return sh, args.Error(1)
}

func (m *MockRepository) InsertEvent(ctx context.Context, e models.TrackingEvent) (*models.TrackingEvent, error) {
	args := m.Called(ctx, e)
	ev, _ := args.Get(0).(*models.TrackingEvent)
	return ev, args.Error(1)
}

func (m *MockRepository) SetCurrentStatus(ctx context.Context, id uint64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	args := m.Called(ctx, shipmentID)
	evs, _ := args.Get(0).([]*models.TrackingEvent)
	return evs, args.Error(1)
}

type MockTxRepository struct {
	MockRepository
}

func (m *MockTxRepository) AppendEventTx(ctx context.Context, e models.TrackingEvent) (*models.TrackingEvent, error) {
	args := m.Called(ctx, e)
	ev, _ := args.Get(0).(*models.TrackingEvent)
	return ev, args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}
