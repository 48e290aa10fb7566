// Package sqliteshipments provides a SQLite-backed shipment store for single-node deployments.
package sqliteshipments

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/storage"
	"github.com/BearBump/ShipTrack/internal/storage/sqliteshipments/migrations"
	"github.com/pkg/errors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists shipments and tracking events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var (
	_ storage.Gateway    = (*Store)(nil)
	_ storage.TxAppender = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	// один writer: append-транзакции не конкурируют за lock
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const shipmentColumns = `id, tracking_number, sender_name, sender_phone, receiver_name, receiver_phone,
origin, destination, current_status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanShipment(row scanner) (*models.Shipment, error) {
	var sh models.Shipment
	var createdAt, updatedAt int64
	if err := row.Scan(
		&sh.ID, &sh.TrackingNumber, &sh.SenderName, &sh.SenderPhone, &sh.ReceiverName, &sh.ReceiverPhone,
		&sh.Origin, &sh.Destination, &sh.CurrentStatus, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	sh.CreatedAt = fromMillis(createdAt)
	sh.UpdatedAt = fromMillis(updatedAt)
	return &sh, nil
}

func (s *Store) InsertShipment(ctx context.Context, in models.Shipment) (*models.Shipment, error) {
	now := toMillis(time.Now())
	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO shipments (
    tracking_number, sender_name, sender_phone, receiver_name, receiver_phone,
    origin, destination, current_status, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.TrackingNumber, in.SenderName, in.SenderPhone, in.ReceiverName, in.ReceiverPhone,
		in.Origin, in.Destination, in.CurrentStatus, now, now)
	if err != nil {
		return nil, mapErr(err, "insert shipment")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapErr(err, "insert shipment id")
	}
	return s.FindShipmentByID(ctx, uint64(id))
}

func (s *Store) FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tracking_number = ?`, trackingNumber)
	sh, err := scanShipment(row)
	if err != nil {
		return nil, mapErr(err, "select shipment by tracking number")
	}
	return sh, nil
}

func (s *Store) FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`, int64(id))
	sh, err := scanShipment(row)
	if err != nil {
		return nil, mapErr(err, "select shipment")
	}
	return sh, nil
}

func (s *Store) UpdateShipment(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error) {
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE shipments SET
    sender_name = COALESCE(?, sender_name),
    sender_phone = COALESCE(?, sender_phone),
    receiver_name = COALESCE(?, receiver_name),
    receiver_phone = COALESCE(?, receiver_phone),
    origin = COALESCE(?, origin),
    destination = COALESCE(?, destination),
    current_status = COALESCE(?, current_status),
    updated_at = ?
WHERE id = ?`,
		nullable(upd.SenderName), nullable(upd.SenderPhone), nullable(upd.ReceiverName), nullable(upd.ReceiverPhone),
		nullable(upd.Origin), nullable(upd.Destination), nullable(upd.CurrentStatus),
		toMillis(time.Now()), int64(id))
	if err != nil {
		return nil, mapErr(err, "update shipment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.Wrap(models.ErrNotFound, "update shipment")
	}
	return s.FindShipmentByID(ctx, id)
}

func (s *Store) SetCurrentStatus(ctx context.Context, id uint64, status string) error {
	return setCurrentStatus(ctx, s.sqlDB, id, status)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setCurrentStatus(ctx context.Context, db execer, id uint64, status string) error {
	res, err := db.ExecContext(ctx, `UPDATE shipments SET current_status = ?, updated_at = ? WHERE id = ?`,
		status, toMillis(time.Now()), int64(id))
	if err != nil {
		return mapErr(err, "update current status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrap(models.ErrNotFound, "update current status")
	}
	return nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(models.ErrNotFound, op)
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return errors.Wrap(models.ErrConflict, op)
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.Wrap(models.ErrNotFound, op)
		}
	}
	return models.Transport(op, err)
}
