package sqliteshipments

import (
	"context"
	"database/sql"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
)

const eventColumns = `id, shipment_id, status, location, note, created_at`

func scanEvent(row scanner) (*models.TrackingEvent, error) {
	var e models.TrackingEvent
	var note sql.NullString
	var createdAt int64
	if err := row.Scan(&e.ID, &e.ShipmentID, &e.Status, &e.Location, &note, &createdAt); err != nil {
		return nil, err
	}
	if note.Valid {
		n := note.String
		e.Note = &n
	}
	e.CreatedAt = fromMillis(createdAt)
	return &e, nil
}

func noteArg(note *string) any {
	if note == nil || *note == "" {
		return nil
	}
	return *note
}

func insertEvent(ctx context.Context, db execer, in models.TrackingEvent) (int64, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO tracking_events (shipment_id, status, location, note, created_at)
VALUES (?, ?, ?, ?, ?)`,
		int64(in.ShipmentID), in.Status, in.Location, noteArg(in.Note), toMillis(time.Now()))
	if err != nil {
		return 0, mapErr(err, "insert tracking event")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapErr(err, "insert tracking event id")
	}
	return id, nil
}

func (s *Store) InsertEvent(ctx context.Context, in models.TrackingEvent) (*models.TrackingEvent, error) {
	id, err := insertEvent(ctx, s.sqlDB, in)
	if err != nil {
		return nil, err
	}
	return s.findEvent(ctx, id)
}

func (s *Store) findEvent(ctx context.Context, id int64) (*models.TrackingEvent, error) {
	e, err := scanEvent(s.sqlDB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM tracking_events WHERE id = ?`, id))
	if err != nil {
		return nil, mapErr(err, "select tracking event")
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+eventColumns+`
FROM tracking_events
WHERE shipment_id = ?
ORDER BY created_at ASC, id ASC`, int64(shipmentID))
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
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "rows")
	}
	return out, nil
}

// AppendEventTx inserts the event and mirrors its status in one transaction.
func (s *Store) AppendEventTx(ctx context.Context, in models.TrackingEvent) (*models.TrackingEvent, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertEvent(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := setCurrentStatus(ctx, tx, in.ShipmentID, in.Status); err != nil {
		return nil, err
	}
	e, err := scanEvent(tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM tracking_events WHERE id = ?`, id))
	if err != nil {
		return nil, mapErr(err, "select tracking event")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapErr(err, "commit tx")
	}
	return e, nil
}
