package mocks

import (
	"context"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertShipment(ctx context.Context, s models.Shipment) (*models.Shipment, error) {
	args := m.Called(ctx, s)
	sh, _ := args.Get(0).(*models.Shipment)
	return sh, args.Error(1)
}

func (m *MockRepository) FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	args := m.Called(ctx, trackingNumber)
	sh, _ := args.Get(0).(*models.Shipment)
	return sh, args.Error(1)
}

func (m *MockRepository) FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	sh, _ := args.Get(0).(*models.Shipment)
	return sh, args.Error(1)
}

func (m *MockRepository) UpdateShipment(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error) {
	args := m.Called(ctx, id, upd)
	sh, _ := args.Get(0).(*models.Shipment)
	return sh, args.Error(1)
}

func (m *MockRepository) ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	args := m.Called(ctx, shipmentID)
	evs, _ := args.Get(0).([]*models.TrackingEvent)
	return evs, args.Error(1)
}

type MockEventAppender struct {
	mock.Mock
}

func (m *MockEventAppender) AppendEvent(ctx context.Context, shipmentID uint64, in models.AppendEventInput) (*models.TrackingEvent, error) {
	args := m.Called(ctx, shipmentID, in)
	ev, _ := args.Get(0).(*models.TrackingEvent)
	return ev, args.Error(1)
}

type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) Generate() string {
	return m.Called().String(0)
}
