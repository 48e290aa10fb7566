package shipments

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/internal/cache/rediscache"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/services/trackevents"
	"github.com/BearBump/ShipTrack/internal/services/tracknumber"
	"github.com/BearBump/ShipTrack/internal/storage"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/BearBump/ShipTrack/internal/storage/sqliteshipments"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

type gatewayFactory func(t *testing.T) storage.Gateway

// tickingClock выдаёт строго возрастающее время, чтобы порядок событий не зависел от разрешения часов.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	cur := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func gateways() map[string]gatewayFactory {
	return map[string]gatewayFactory{
		"memory": func(t *testing.T) storage.Gateway {
			return memshipments.New().WithClock(tickingClock())
		},
		"sqlite": func(t *testing.T) storage.Gateway {
			st, err := sqliteshipments.Open(filepath.Join(t.TempDir(), "flow.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })
			return st
		},
	}
}

func newFlow(gw storage.Gateway) (*Service, *trackevents.Service) {
	events := trackevents.New(gw, nil, nil, "")
	return New(gw, events, tracknumber.New(), nil, 0), events
}

func TestFlow_CreateLagosAbujaThenDeliver(t *testing.T) {
	for name, factory := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, events := newFlow(factory(t))

			sh, err := svc.CreateShipment(ctx, models.ShipmentCreateInput{
				SenderName:   "Ada",
				ReceiverName: "Chidi",
				Origin:       "Lagos",
				Destination:  "Abuja",
			})
			require.NoError(t, err)
			require.True(t, tracknumber.Valid(sh.TrackingNumber), sh.TrackingNumber)
			require.Equal(t, models.StatusOrderCreated, sh.CurrentStatus)

			evs, err := events.ListEventsForShipment(ctx, sh.ID)
			require.NoError(t, err)
			require.Len(t, evs, 1)
			require.Equal(t, models.StatusOrderCreated, evs[0].Status)
			require.Equal(t, "Lagos", evs[0].Location)
			require.NotNil(t, evs[0].Note)
			require.Equal(t, models.InitialEventNote, *evs[0].Note)

			_, err = events.AppendEvent(ctx, sh.ID, models.AppendEventInput{Status: models.StatusDelivered, Location: "Abuja"})
			require.NoError(t, err)

			got, err := svc.GetShipmentByTrackingNumber(ctx, sh.TrackingNumber)
			require.NoError(t, err)
			require.Equal(t, models.StatusDelivered, got.CurrentStatus)

			evs, err = events.ListEventsForShipment(ctx, sh.ID)
			require.NoError(t, err)
			require.Len(t, evs, 2)
			require.Equal(t, models.StatusDelivered, evs[len(evs)-1].Status)

			view, err := svc.GetTrackingView(ctx, sh.TrackingNumber)
			require.NoError(t, err)
			require.True(t, view.Delivered)
			require.Equal(t, models.ToneDelivered, view.Tone)
			require.Equal(t, 1, view.LatestIndex)
		})
	}
}

func TestFlow_SequenceOfEventsMirrorsLastStatus(t *testing.T) {
	statuses := []string{
		models.StatusPickedUp,
		models.StatusInTransit,
		models.StatusArrivedAtFacility,
		"Held at customs",
		models.StatusOutForDelivery,
		models.StatusDelivered,
		// разрешено: переходы не проверяются
		models.StatusPickedUp,
	}

	for name, factory := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, events := newFlow(factory(t))

			sh, err := svc.CreateShipment(ctx, models.ShipmentCreateInput{
				SenderName: "Ada", ReceiverName: "Chidi", Origin: "Lagos", Destination: "Kano",
			})
			require.NoError(t, err)

			for i, st := range statuses {
				_, err := events.AppendEvent(ctx, sh.ID, models.AppendEventInput{Status: st, Location: "Hub"})
				require.NoError(t, err)

				got, err := svc.GetShipment(ctx, sh.ID)
				require.NoError(t, err)
				require.Equal(t, st, got.CurrentStatus)

				evs, err := events.ListEventsForShipment(ctx, sh.ID)
				require.NoError(t, err)
				require.Len(t, evs, i+2)
				for j := 1; j < len(evs); j++ {
					require.False(t, evs[j].CreatedAt.Before(evs[j-1].CreatedAt))
				}
				require.Equal(t, st, evs[len(evs)-1].Status)
			}
		})
	}
}

func TestFlow_UnknownTrackingNumberNotFound(t *testing.T) {
	for name, factory := range gateways() {
		t.Run(name, func(t *testing.T) {
			svc, _ := newFlow(factory(t))

			sh, err := svc.GetShipmentByTrackingNumber(context.Background(), "TRK-000000000")
			require.ErrorIs(t, err, models.ErrNotFound)
			require.Nil(t, sh)

			v, err := svc.GetTrackingView(context.Background(), "TRK-000000000")
			require.ErrorIs(t, err, models.ErrNotFound)
			require.Nil(t, v)
		})
	}
}

func TestFlow_UpdateKeepsTrackingNumber(t *testing.T) {
	for name, factory := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, events := newFlow(factory(t))

			sh, err := svc.CreateShipment(ctx, models.ShipmentCreateInput{
				TrackingNumber: "TRK-424242424",
				SenderName:     "Ada", ReceiverName: "Chidi", Origin: "Lagos", Destination: "Abuja",
			})
			require.NoError(t, err)

			status := "Returned to sender"
			city := "Enugu"
			got, err := svc.UpdateShipmentFields(ctx, sh.ID, models.ShipmentFieldsUpdate{Destination: &city, CurrentStatus: &status})
			require.NoError(t, err)
			require.Equal(t, "TRK-424242424", got.TrackingNumber)
			require.Equal(t, "Enugu", got.Destination)
			require.Equal(t, sh.CreatedAt.Unix(), got.CreatedAt.Unix())

			view, err := svc.GetTrackingView(ctx, sh.TrackingNumber)
			require.NoError(t, err)
			require.False(t, view.StatusInSync)

			_, err = events.AppendEvent(ctx, sh.ID, models.AppendEventInput{Status: models.StatusInTransit, Location: "Ibadan"})
			require.NoError(t, err)
			view, err = svc.GetTrackingView(ctx, sh.TrackingNumber)
			require.NoError(t, err)
			require.True(t, view.StatusInSync)

			_, err = svc.UpdateShipmentFields(ctx, 9999, models.ShipmentFieldsUpdate{Destination: &city})
			require.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestFlow_DuplicateTrackingNumberConflict(t *testing.T) {
	for name, factory := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newFlow(factory(t))
			in := models.ShipmentCreateInput{
				TrackingNumber: "TRK-131313131",
				SenderName:     "Ada", ReceiverName: "Chidi", Origin: "Lagos", Destination: "Abuja",
			}
			_, err := svc.CreateShipment(ctx, in)
			require.NoError(t, err)

			_, err = svc.CreateShipment(ctx, in)
			require.ErrorIs(t, err, models.ErrConflict)
		})
	}
}

// interleavedRepo выполняет hook один раз сразу после первого ListEvents,
// то есть между чтением представления и записью его в кэш.
type interleavedRepo struct {
	Repository
	hook func()
}

func (r *interleavedRepo) ListEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	evs, err := r.Repository.ListEvents(ctx, shipmentID)
	if h := r.hook; h != nil {
		r.hook = nil
		h()
	}
	return evs, err
}

func TestFlow_TrackingViewNotStaleAfterConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })

	gw := memshipments.New().WithClock(tickingClock())
	events := trackevents.New(gw, rc, nil, "")
	repo := &interleavedRepo{Repository: gw}
	svc := New(repo, events, tracknumber.New(), rc, 5*time.Minute)

	sh, err := svc.CreateShipment(ctx, models.ShipmentCreateInput{
		SenderName: "Ada", ReceiverName: "Chidi", Origin: "Lagos", Destination: "Abuja",
	})
	require.NoError(t, err)

	repo.hook = func() {
		_, err := events.AppendEvent(ctx, sh.ID, models.AppendEventInput{Status: models.StatusDelivered, Location: "Abuja"})
		require.NoError(t, err)
	}
	_, err = svc.GetTrackingView(ctx, sh.TrackingNumber)
	require.NoError(t, err)

	v, err := svc.GetTrackingView(ctx, sh.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, v.Shipment.CurrentStatus)
	require.Len(t, v.Events, 2)
	require.True(t, v.Delivered)
}
