package shipments

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/cache"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
)

// Сколько раз пробуем сгенерировать номер заново при конфликте уникальности.
const generateAttempts = 3

type Repository interface {
	InsertShipment(ctx context.Context, s models.Shipment) (*models.Shipment, error)
	FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	FindShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error)
	UpdateShipment(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error)
	ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
}

type EventAppender interface {
	AppendEvent(ctx context.Context, shipmentID uint64, in models.AppendEventInput) (*models.TrackingEvent, error)
}

type NumberGenerator interface {
	Generate() string
}

type Service struct {
	repo    Repository
	events  EventAppender
	numbers NumberGenerator

	cache   cache.BytesCache
	viewTTL time.Duration
}

func New(repo Repository, events EventAppender, numbers NumberGenerator, c cache.BytesCache, viewTTL time.Duration) *Service {
	return &Service{repo: repo, events: events, numbers: numbers, cache: c, viewTTL: viewTTL}
}

// CreateShipment создаёт посылку со статусом "Order Created" и начальным событием.
// Если посылка записана, а начальное событие нет, возвращается посылка и
// *models.PartialFailureWarning.
func (s *Service) CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.Shipment, error) {
	in = trimCreateInput(in)
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	sh := models.Shipment{
		SenderName:    in.SenderName,
		SenderPhone:   in.SenderPhone,
		ReceiverName:  in.ReceiverName,
		ReceiverPhone: in.ReceiverPhone,
		Origin:        in.Origin,
		Destination:   in.Destination,
		CurrentStatus: models.StatusOrderCreated,
	}

	created, err := s.insert(ctx, sh, in.TrackingNumber)
	if err != nil {
		return nil, err
	}

	_, err = s.events.AppendEvent(ctx, created.ID, models.AppendEventInput{
		Status:   models.StatusOrderCreated,
		Location: created.Origin,
		Note:     models.InitialEventNote,
	})
	if err != nil {
		if _, ok := models.AsPartialFailure(err); ok {
			// событие записано, статус и так "Order Created"
			return created, nil
		}
		slog.Warn("initial tracking event failed", "tracking_number", created.TrackingNumber, "err", err)
		return created, &models.PartialFailureWarning{Op: "append initial event", Err: err}
	}
	return created, nil
}

func (s *Service) insert(ctx context.Context, sh models.Shipment, trackingNumber string) (*models.Shipment, error) {
	if trackingNumber != "" {
		sh.TrackingNumber = trackingNumber
		return s.repo.InsertShipment(ctx, sh)
	}

	var lastErr error
	for attempt := 0; attempt < generateAttempts; attempt++ {
		sh.TrackingNumber = s.numbers.Generate()
		created, err := s.repo.InsertShipment(ctx, sh)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		slog.Info("generated tracking number collided, retrying", "tracking_number", sh.TrackingNumber, "attempt", attempt+1)
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, models.Required("tracking_number")
	}
	return s.repo.FindShipmentByTrackingNumber(ctx, trackingNumber)
}

func (s *Service) GetShipment(ctx context.Context, id uint64) (*models.Shipment, error) {
	if id == 0 {
		return nil, models.Required("id")
	}
	return s.repo.FindShipmentByID(ctx, id)
}

// UpdateShipmentFields меняет только изменяемые поля. Номер, id и created_at в
// ShipmentFieldsUpdate отсутствуют, поэтому не меняются никогда.
// current_status можно выставить вручную: он расходится с последним событием
// до следующего AppendEvent (см. TrackingView.StatusInSync).
func (s *Service) UpdateShipmentFields(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error) {
	if id == 0 {
		return nil, models.Required("id")
	}
	upd, err := normalizeUpdate(upd)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return s.repo.FindShipmentByID(ctx, id)
	}

	sh, err := s.repo.UpdateShipment(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if upd.CurrentStatus != nil {
		slog.Info("current status set manually", "tracking_number", sh.TrackingNumber, "status", sh.CurrentStatus)
	}
	s.invalidate(ctx, sh.TrackingNumber)
	return sh, nil
}

// GetTrackingView отдаёт публичное чтение: посылка + события по порядку. Кэш best-effort.
func (s *Service) GetTrackingView(ctx context.Context, trackingNumber string) (*models.TrackingView, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, models.Required("tracking_number")
	}

	key := cache.TrackingViewKey(trackingNumber)
	if s.cacheEnabled() {
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var v models.TrackingView
			if json.Unmarshal(b, &v) == nil && v.Shipment != nil {
				return &v, nil
			}
		}
	}

	v, b, err := s.loadView(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if !s.cacheEnabled() {
		return v, nil
	}
	if err := s.cache.Set(ctx, key, b, s.viewTTL); err != nil {
		return v, nil
	}

	// AppendEvent/UpdateShipmentFields могли закоммититься между чтением и Set:
	// их Delete тогда уже прошёл, и в кэше лежит старая версия. Перечитываем и
	// при расхождении снимаем ключ сами.
	fresh, fb, err := s.loadView(ctx, trackingNumber)
	if err != nil {
		s.invalidate(ctx, trackingNumber)
		return v, nil
	}
	if !bytes.Equal(b, fb) {
		s.invalidate(ctx, trackingNumber)
		return fresh, nil
	}
	return v, nil
}

func (s *Service) loadView(ctx context.Context, trackingNumber string) (*models.TrackingView, []byte, error) {
	sh, err := s.repo.FindShipmentByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, nil, err
	}
	evs, err := s.repo.ListEvents(ctx, sh.ID)
	if err != nil {
		return nil, nil, err
	}
	v := models.NewTrackingView(sh, evs)
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal tracking view")
	}
	return v, b, nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.viewTTL > 0
}

func (s *Service) invalidate(ctx context.Context, trackingNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.TrackingViewKey(trackingNumber)); err != nil {
		slog.Warn("tracking view cache invalidation failed", "tracking_number", trackingNumber, "err", err)
	}
}
