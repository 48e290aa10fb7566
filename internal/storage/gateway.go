// Package storage describes the store gateway shared by the shipment and
// tracking-event services. Backends live in the sub-packages.
package storage

import (
	"context"

	"github.com/BearBump/ShipTrack/internal/models"
)

// Gateway is the full table-level contract. Errors:
// models.ErrNotFound for a missing row, models.ErrConflict for a duplicate
// tracking number, *models.TransportError for everything else.
type Gateway interface {
	InsertShipment(ctx context.Context, s models.Shipment) (*models.Shipment, error)
	FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error)
	UpdateShipment(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error)
	SetCurrentStatus(ctx context.Context, id uint64, status string) error

	InsertEvent(ctx context.Context, e models.TrackingEvent) (*models.TrackingEvent, error)
	ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
}

// TxAppender is implemented by backends that can insert an event and mirror
// its status onto the shipment in a single transaction.
type TxAppender interface {
	AppendEventTx(ctx context.Context, e models.TrackingEvent) (*models.TrackingEvent, error)
}
