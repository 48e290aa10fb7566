package trackevents

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/BearBump/ShipTrack/internal/cache"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error)
	InsertEvent(ctx context.Context, e models.TrackingEvent) (*models.TrackingEvent, error)
	SetCurrentStatus(ctx context.Context, id uint64, status string) error
	ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo     Repository
	cache    cache.BytesCache
	producer Producer
	topic    string
	policy   StatusPolicy
}

func New(repo Repository, c cache.BytesCache, producer Producer, topic string) *Service {
	if topic == "" {
		topic = messages.TopicShipmentStatusChanged
	}
	return &Service{
		repo:     repo,
		cache:    c,
		producer: producer,
		topic:    topic,
		policy:   PermissivePolicy{},
	}
}

func (s *Service) WithPolicy(p StatusPolicy) *Service {
	if p == nil {
		p = PermissivePolicy{}
	}
	s.policy = p
	return s
}

// AppendEvent добавляет событие и переносит его статус в current_status посылки.
// Если хранилище умеет транзакции, обе записи атомарны. Иначе при сбое второй
// записи событие остаётся, а вызывающий получает событие и *models.PartialFailureWarning.
func (s *Service) AppendEvent(ctx context.Context, shipmentID uint64, in models.AppendEventInput) (*models.TrackingEvent, error) {
	status := strings.TrimSpace(in.Status)
	location := strings.TrimSpace(in.Location)
	note := strings.TrimSpace(in.Note)

	if shipmentID == 0 {
		return nil, models.Required("shipment_id")
	}
	if status == "" {
		return nil, models.Required("status")
	}
	if location == "" {
		return nil, models.Required("location")
	}

	sh, err := s.repo.FindShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(sh, status); err != nil {
		return nil, err
	}

	ev := models.TrackingEvent{
		ShipmentID: shipmentID,
		Status:     status,
		Location:   location,
	}
	if note != "" {
		ev.Note = &note
	}

	var (
		stored *models.TrackingEvent
		warn   *models.PartialFailureWarning
	)
	if tx, ok := s.repo.(storage.TxAppender); ok {
		stored, err = tx.AppendEventTx(ctx, ev)
		if err != nil {
			return nil, err
		}
	} else {
		stored, err = s.repo.InsertEvent(ctx, ev)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetCurrentStatus(ctx, shipmentID, status); err != nil {
			warn = &models.PartialFailureWarning{Op: "mirror current status", Err: err}
			slog.Warn("tracking event stored but current status is stale",
				"shipment_id", shipmentID, "event_id", stored.ID, "status", status, "err", err)
		}
	}

	s.invalidate(ctx, sh.TrackingNumber)
	s.publish(ctx, sh, stored)

	if warn != nil {
		return stored, warn
	}
	return stored, nil
}

// ListEventsForShipment возвращает события по возрастанию created_at, последний элемент и есть текущий шаг.
func (s *Service) ListEventsForShipment(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	if shipmentID == 0 {
		return nil, models.Required("shipment_id")
	}
	if _, err := s.repo.FindShipmentByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, shipmentID)
}

func (s *Service) invalidate(ctx context.Context, trackingNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.TrackingViewKey(trackingNumber)); err != nil {
		slog.Warn("tracking view cache invalidation failed", "tracking_number", trackingNumber, "err", err)
	}
}

func (s *Service) publish(ctx context.Context, sh *models.Shipment, ev *models.TrackingEvent) {
	if s.producer == nil {
		return
	}
	msg := messages.ShipmentStatusChanged{
		MessageID:      uuid.NewString(),
		ShipmentID:     sh.ID,
		TrackingNumber: sh.TrackingNumber,
		EventID:        ev.ID,
		Status:         ev.Status,
		Location:       ev.Location,
		Note:           ev.Note,
		OccurredAt:     ev.CreatedAt,
	}
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal status changed message", "err", err)
		return
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(sh.TrackingNumber), b); err != nil {
		slog.Warn("status changed message not published",
			"tracking_number", sh.TrackingNumber, "event_id", ev.ID, "err", errors.Cause(err))
	}
}
