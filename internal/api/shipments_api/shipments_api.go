package shipments_api

import (
	"context"
	"net/http"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/services/contact"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ShipmentService interface {
	CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	GetShipment(ctx context.Context, id uint64) (*models.Shipment, error)
	UpdateShipmentFields(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error)
	GetTrackingView(ctx context.Context, trackingNumber string) (*models.TrackingView, error)
}

type EventService interface {
	AppendEvent(ctx context.Context, shipmentID uint64, in models.AppendEventInput) (*models.TrackingEvent, error)
	ListEventsForShipment(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
}

type ContactService interface {
	Submit(ctx context.Context, in models.ContactMessage) (contact.Result, error)
	PartnershipURL() string
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// AdminGuard: middleware, пропускающий только запросы с admin-токеном.
type AdminGuard func(next http.Handler) http.Handler

type ShipmentsAPI struct {
	shipments ShipmentService
	events    EventService
	contact   ContactService
	guard     AdminGuard

	limiter     RateLimiter
	lookupLimit int64
	trustProxy  bool
}

func New(shipments ShipmentService, events EventService, contact ContactService, guard AdminGuard) *ShipmentsAPI {
	return &ShipmentsAPI{
		shipments: shipments,
		events:    events,
		contact:   contact,
		guard:     guard,
	}
}

// WithLookupRateLimit ограничивает публичный трекинг perMinute запросами с одного IP.
func (a *ShipmentsAPI) WithLookupRateLimit(rl RateLimiter, perMinute int) *ShipmentsAPI {
	a.limiter = rl
	a.lookupLimit = int64(perMinute)
	return a
}

// WithTrustedProxy берёт адрес клиента из X-Forwarded-For / X-Real-IP.
// Без него лимит считается по адресу соединения.
func (a *ShipmentsAPI) WithTrustedProxy(trust bool) *ShipmentsAPI {
	a.trustProxy = trust
	return a
}

// Mount вешает все маршруты /api/v1 на r.
func (a *ShipmentsAPI) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		if a.trustProxy {
			r.Use(middleware.RealIP)
		}

		r.With(a.rateLimit).Get("/track/{trackingNumber}", a.track)
		if a.contact != nil {
			r.Post("/contact", a.submitContact)
			r.Get("/contact/partnership", a.partnership)
		}

		r.Route("/admin", func(r chi.Router) {
			if a.guard != nil {
				r.Use(a.guard)
			}
			r.Get("/shipments", a.searchShipment)
			r.Post("/shipments", a.createShipment)
			r.Get("/shipments/{id}", a.getShipment)
			r.Patch("/shipments/{id}", a.updateShipment)
			r.Get("/shipments/{id}/events", a.listEvents)
			r.Post("/shipments/{id}/events", a.appendEvent)
		})
	})
}
