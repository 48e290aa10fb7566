package pgshipments

import (
	"context"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const eventColumns = `id, shipment_id, status, location, note, created_at`

func scanEvent(row scanner) (*models.TrackingEvent, error) {
	var e models.TrackingEvent
	var note *string
	if err := row.Scan(&e.ID, &e.ShipmentID, &e.Status, &e.Location, &note, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Note = note
	return &e, nil
}

func noteArg(note *string) any {
	if note == nil || *note == "" {
		return nil
	}
	return *note
}

func (s *Storage) InsertEvent(ctx context.Context, in models.TrackingEvent) (*models.TrackingEvent, error) {
	row := s.db.QueryRow(ctx, `
INSERT INTO tracking_events (shipment_id, status, location, note, created_at)
VALUES ($1,$2,$3,$4, clock_timestamp())
RETURNING `+eventColumns,
		in.ShipmentID, in.Status, in.Location, noteArg(in.Note))

	e, err := scanEvent(row)
	if err != nil {
		return nil, mapErr(err, "insert tracking event")
	}
	return e, nil
}

func (s *Storage) ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+eventColumns+`
FROM tracking_events
WHERE shipment_id = $1
ORDER BY created_at ASC, id ASC
`, shipmentID)
	if err != nil {
		return nil, mapErr(err, "select events")
	}
	defer rows.Close()

	out := []*models.TrackingEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, mapErr(err, "scan event")
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, mapErr(rows.Err(), "rows")
	}
	return out, nil
}

// AppendEventTx вставляет событие и переносит его статус в shipments.current_status
// в одной транзакции. Строка shipments блокируется, чтобы параллельные append
// сериализовались и статус совпадал с последним событием.
func (s *Storage) AppendEventTx(ctx context.Context, in models.TrackingEvent) (*models.TrackingEvent, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, mapErr(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uint64
	if err := tx.QueryRow(ctx, `SELECT id FROM shipments WHERE id = $1 FOR UPDATE`, in.ShipmentID).Scan(&id); err != nil {
		return nil, mapErr(err, "lock shipment")
	}

	e, err := scanEvent(tx.QueryRow(ctx, `
INSERT INTO tracking_events (shipment_id, status, location, note, created_at)
VALUES ($1,$2,$3,$4, clock_timestamp())
RETURNING `+eventColumns,
		in.ShipmentID, in.Status, in.Location, noteArg(in.Note)))
	if err != nil {
		return nil, mapErr(err, "insert tracking event")
	}

	if _, err := tx.Exec(ctx, `UPDATE shipments SET current_status = $2, updated_at = now() WHERE id = $1`, in.ShipmentID, in.Status); err != nil {
		return nil, mapErr(err, "mirror current status")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr(errors.Wrap(err, "commit"), "append event tx")
	}
	return e, nil
}
