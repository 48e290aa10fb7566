package pgshipments

import (
	"context"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
)

const shipmentColumns = `
  id, tracking_number,
  sender_name, sender_phone,
  receiver_name, receiver_phone,
  origin, destination,
  current_status,
  created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanShipment(row scanner) (*models.Shipment, error) {
	var sh models.Shipment
	if err := row.Scan(
		&sh.ID, &sh.TrackingNumber,
		&sh.SenderName, &sh.SenderPhone,
		&sh.ReceiverName, &sh.ReceiverPhone,
		&sh.Origin, &sh.Destination,
		&sh.CurrentStatus,
		&sh.CreatedAt, &sh.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *Storage) InsertShipment(ctx context.Context, in models.Shipment) (*models.Shipment, error) {
	now := time.Now().UTC()

	row := s.db.QueryRow(ctx, `
INSERT INTO shipments (
  tracking_number, sender_name, sender_phone, receiver_name, receiver_phone,
  origin, destination, current_status, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
RETURNING`+shipmentColumns,
		in.TrackingNumber, in.SenderName, in.SenderPhone, in.ReceiverName, in.ReceiverPhone,
		in.Origin, in.Destination, in.CurrentStatus, now)

	sh, err := scanShipment(row)
	if err != nil {
		return nil, mapErr(err, "insert shipment")
	}
	return sh, nil
}

func (s *Storage) FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+`
FROM shipments
WHERE tracking_number = $1
`, trackingNumber)

	sh, err := scanShipment(row)
	if err != nil {
		return nil, mapErr(err, "select shipment by tracking number")
	}
	return sh, nil
}

func (s *Storage) FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+`
FROM shipments
WHERE id = $1
`, id)

	sh, err := scanShipment(row)
	if err != nil {
		return nil, mapErr(err, "select shipment")
	}
	return sh, nil
}

// UpdateShipment: NULL-параметры оставляют колонку как есть.
func (s *Storage) UpdateShipment(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `
UPDATE shipments
SET
  sender_name = COALESCE($2::text, sender_name),
  sender_phone = COALESCE($3::text, sender_phone),
  receiver_name = COALESCE($4::text, receiver_name),
  receiver_phone = COALESCE($5::text, receiver_phone),
  origin = COALESCE($6::text, origin),
  destination = COALESCE($7::text, destination),
  current_status = COALESCE($8::text, current_status),
  updated_at = now()
WHERE id = $1
RETURNING`+shipmentColumns,
		id, upd.SenderName, upd.SenderPhone, upd.ReceiverName, upd.ReceiverPhone,
		upd.Origin, upd.Destination, upd.CurrentStatus)

	sh, err := scanShipment(row)
	if err != nil {
		return nil, mapErr(err, "update shipment")
	}
	return sh, nil
}

func (s *Storage) SetCurrentStatus(ctx context.Context, id uint64, status string) error {
	tag, err := s.db.Exec(ctx, `UPDATE shipments SET current_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return mapErr(err, "update current status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(models.ErrNotFound, "update current status")
	}
	return nil
}
