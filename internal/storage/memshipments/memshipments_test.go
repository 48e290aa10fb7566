package memshipments

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStore_ListEvents_SortsByCreatedAtThenID(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base, base.Add(-time.Minute), base.Add(time.Minute)}
	i := 0
	st := New().WithClock(func() time.Time {
		ts := ticks[i%len(ticks)]
		i++
		return ts
	})
	ctx := context.Background()

	// insert shipment consumes tick 0
	sh, err := st.InsertShipment(ctx, models.Shipment{TrackingNumber: "TRK-1", CurrentStatus: models.StatusOrderCreated})
	require.NoError(t, err)

	a, err := st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: sh.ID, Status: "A", Location: "L"}) // base
	require.NoError(t, err)
	b, err := st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: sh.ID, Status: "B", Location: "L"}) // base-1m
	require.NoError(t, err)
	c, err := st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: sh.ID, Status: "C", Location: "L"}) // base+1m
	require.NoError(t, err)

	evs, err := st.ListEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Equal(t, []uint64{b.ID, a.ID, c.ID}, []uint64{evs[0].ID, evs[1].ID, evs[2].ID})
}

func TestStore_ConflictAndNotFound(t *testing.T) {
	st := New()
	ctx := context.Background()

	_, err := st.InsertShipment(ctx, models.Shipment{TrackingNumber: "TRK-1"})
	require.NoError(t, err)
	_, err = st.InsertShipment(ctx, models.Shipment{TrackingNumber: "TRK-1"})
	require.ErrorIs(t, err, models.ErrConflict)

	_, err = st.FindShipmentByTrackingNumber(ctx, "nope")
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.FindShipmentByID(ctx, 100)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.UpdateShipment(ctx, 100, models.ShipmentFieldsUpdate{})
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, st.SetCurrentStatus(ctx, 100, "x"), models.ErrNotFound)
	_, err = st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: 100})
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.AppendEventTx(ctx, models.TrackingEvent{ShipmentID: 100})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_CanceledContextIsTransport(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.FindShipmentByTrackingNumber(ctx, "TRK-1")
	require.True(t, models.IsTransport(err))
}

func TestStore_AppendEventTx_MirrorsStatus_EmptyNoteIsNil(t *testing.T) {
	st := New()
	ctx := context.Background()
	sh, err := st.InsertShipment(ctx, models.Shipment{TrackingNumber: "TRK-1", CurrentStatus: models.StatusOrderCreated})
	require.NoError(t, err)

	empty := ""
	ev, err := st.AppendEventTx(ctx, models.TrackingEvent{ShipmentID: sh.ID, Status: models.StatusInTransit, Location: "Ibadan", Note: &empty})
	require.NoError(t, err)
	require.Nil(t, ev.Note)

	got, err := st.FindShipmentByID(ctx, sh.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInTransit, got.CurrentStatus)
}
