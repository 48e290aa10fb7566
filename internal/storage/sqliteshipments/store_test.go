package sqliteshipments

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "shiptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newShipment(tn string) models.Shipment {
	return models.Shipment{
		TrackingNumber: tn,
		SenderName:     "Ada",
		ReceiverName:   "Bayo",
		Origin:         "Lagos",
		Destination:    "Abuja",
		CurrentStatus:  models.StatusOrderCreated,
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpen_MissingDirWrapped(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no-such-dir", "shiptrack.db"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ping sqlite db")
	// обёртка pkg/errors несёт стек
	require.Contains(t, fmt.Sprintf("%+v", err), "store.go")
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestStore_ShipmentLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	created, err := st.InsertShipment(ctx, newShipment("TRK-123456789"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "TRK-123456789", created.TrackingNumber)

	_, err = st.InsertShipment(ctx, newShipment("TRK-123456789"))
	require.ErrorIs(t, err, models.ErrConflict)

	byTN, err := st.FindShipmentByTrackingNumber(ctx, "TRK-123456789")
	require.NoError(t, err)
	require.Equal(t, created.ID, byTN.ID)

	_, err = st.FindShipmentByTrackingNumber(ctx, "TRK-000000000")
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.FindShipmentByID(ctx, 42)
	require.ErrorIs(t, err, models.ErrNotFound)

	dest := "Ibadan"
	upd, err := st.UpdateShipment(ctx, created.ID, models.ShipmentFieldsUpdate{Destination: &dest})
	require.NoError(t, err)
	require.Equal(t, "Ibadan", upd.Destination)
	require.Equal(t, "Lagos", upd.Origin)
	require.Equal(t, created.TrackingNumber, upd.TrackingNumber)
	require.True(t, created.CreatedAt.Equal(upd.CreatedAt))

	_, err = st.UpdateShipment(ctx, 42, models.ShipmentFieldsUpdate{Destination: &dest})
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, st.SetCurrentStatus(ctx, created.ID, models.StatusPickedUp))
	require.ErrorIs(t, st.SetCurrentStatus(ctx, 42, models.StatusPickedUp), models.ErrNotFound)
}

func TestStore_EventsOrderedAndMirrored(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sh, err := st.InsertShipment(ctx, newShipment("TRK-222222222"))
	require.NoError(t, err)

	note := models.InitialEventNote
	first, err := st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: sh.ID, Status: models.StatusOrderCreated, Location: "Lagos", Note: &note})
	require.NoError(t, err)
	require.NotNil(t, first.Note)
	require.Equal(t, note, *first.Note)

	statuses := []string{models.StatusPickedUp, models.StatusInTransit, models.StatusDelivered}
	for _, status := range statuses {
		ev, err := st.AppendEventTx(ctx, models.TrackingEvent{ShipmentID: sh.ID, Status: status, Location: "Abuja"})
		require.NoError(t, err)
		require.Nil(t, ev.Note)
	}

	evs, err := st.ListEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, evs, 4)
	for i := 1; i < len(evs); i++ {
		require.Less(t, evs[i-1].ID, evs[i].ID)
		require.False(t, evs[i].CreatedAt.Before(evs[i-1].CreatedAt))
	}
	require.Equal(t, models.StatusDelivered, evs[len(evs)-1].Status)

	got, err := st.FindShipmentByID(ctx, sh.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, got.CurrentStatus)

	empty, err := st.ListEvents(ctx, 999)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStore_EventForUnknownShipment(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: 77, Status: "x", Location: "y"})
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = st.AppendEventTx(ctx, models.TrackingEvent{ShipmentID: 77, Status: "x", Location: "y"})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestExtractUp(t *testing.T) {
	require.Equal(t, "\nA;\n", extractUp("-- +migrate Up\nA;\n-- +migrate Down\nB;"))
	require.Equal(t, "C;", extractUp("C;"))
}
