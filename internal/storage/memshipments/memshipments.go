// Package memshipments is an in-process store gateway used by tests and the demo
// ("memory" driver). State is lost on restart.
package memshipments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/storage"
	"github.com/pkg/errors"
)

type Store struct {
	mu sync.RWMutex

	now func() time.Time

	nextShipmentID uint64
	nextEventID    uint64

	shipments  map[uint64]models.Shipment
	byTracking map[string]uint64
	events     map[uint64][]models.TrackingEvent
}

var (
	_ storage.Gateway    = (*Store)(nil)
	_ storage.TxAppender = (*Store)(nil)
)

func New() *Store {
	return &Store{
		now:        func() time.Time { return time.Now().UTC() },
		shipments:  make(map[uint64]models.Shipment),
		byTracking: make(map[string]uint64),
		events:     make(map[uint64][]models.TrackingEvent),
	}
}

// WithClock подменяет источник времени (для тестов).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) InsertShipment(ctx context.Context, in models.Shipment) (*models.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("insert shipment", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byTracking[in.TrackingNumber]; ok {
		return nil, errors.Wrap(models.ErrConflict, "insert shipment")
	}
	s.nextShipmentID++
	now := s.now()
	in.ID = s.nextShipmentID
	in.CreatedAt = now
	in.UpdatedAt = now
	s.shipments[in.ID] = in
	s.byTracking[in.TrackingNumber] = in.ID

	out := in
	return &out, nil
}

func (s *Store) FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("select shipment by tracking number", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTracking[trackingNumber]
	if !ok {
		return nil, errors.Wrap(models.ErrNotFound, "select shipment by tracking number")
	}
	out := s.shipments[id]
	return &out, nil
}

func (s *Store) FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("select shipment", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shipments[id]
	if !ok {
		return nil, errors.Wrap(models.ErrNotFound, "select shipment")
	}
	return &sh, nil
}

func (s *Store) UpdateShipment(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("update shipment", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shipments[id]
	if !ok {
		return nil, errors.Wrap(models.ErrNotFound, "update shipment")
	}
	upd.Apply(&sh)
	sh.UpdatedAt = s.now()
	s.shipments[id] = sh
	return &sh, nil
}

func (s *Store) SetCurrentStatus(ctx context.Context, id uint64, status string) error {
	if err := ctx.Err(); err != nil {
		return models.Transport("update current status", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStatusLocked(id, status)
}

func (s *Store) setStatusLocked(id uint64, status string) error {
	sh, ok := s.shipments[id]
	if !ok {
		return errors.Wrap(models.ErrNotFound, "update current status")
	}
	sh.CurrentStatus = status
	sh.UpdatedAt = s.now()
	s.shipments[id] = sh
	return nil
}

func (s *Store) InsertEvent(ctx context.Context, in models.TrackingEvent) (*models.TrackingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("insert tracking event", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEventLocked(in)
}

func (s *Store) insertEventLocked(in models.TrackingEvent) (*models.TrackingEvent, error) {
	if _, ok := s.shipments[in.ShipmentID]; !ok {
		return nil, errors.Wrap(models.ErrNotFound, "insert tracking event")
	}
	s.nextEventID++
	in.ID = s.nextEventID
	in.CreatedAt = s.now()
	if in.Note != nil {
		if *in.Note == "" {
			in.Note = nil
		} else {
			n := *in.Note
			in.Note = &n
		}
	}
	s.events[in.ShipmentID] = append(s.events[in.ShipmentID], in)

	out := in
	return &out, nil
}

func (s *Store) ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("select events", err)
	}
	s.mu.RLock()
	stored := s.events[shipmentID]
	out := make([]*models.TrackingEvent, 0, len(stored))
	for i := range stored {
		e := stored[i]
		out = append(out, &e)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AppendEventTx(ctx context.Context, in models.TrackingEvent) (*models.TrackingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Transport("append event tx", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.insertEventLocked(in)
	if err != nil {
		return nil, err
	}
	if err := s.setStatusLocked(in.ShipmentID, in.Status); err != nil {
		return nil, err
	}
	return e, nil
}
