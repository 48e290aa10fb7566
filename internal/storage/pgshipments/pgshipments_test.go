package pgshipments

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "shiptrack_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/shiptrack_test?sslmode=disable"

	// порт слушается раньше, чем postgres готов принимать запросы
	var st *Storage
	require.Eventually(t, func() bool {
		st, err = New(dsn)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(st.Close)
	return st
}

func TestPGShipments_RepoFlow(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	created, err := st.InsertShipment(ctx, models.Shipment{
		TrackingNumber: "TRK-100000001",
		SenderName:     "Ada",
		ReceiverName:   "Bayo",
		Origin:         "Lagos",
		Destination:    "Abuja",
		CurrentStatus:  models.StatusOrderCreated,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	_, err = st.InsertShipment(ctx, models.Shipment{TrackingNumber: "TRK-100000001", SenderName: "x", ReceiverName: "y", Origin: "o", Destination: "d", CurrentStatus: "s"})
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := st.FindShipmentByTrackingNumber(ctx, "TRK-100000001")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = st.FindShipmentByTrackingNumber(ctx, "TRK-000000000")
	require.ErrorIs(t, err, models.ErrNotFound)

	note := "Shipment request initialized"
	_, err = st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: created.ID, Status: models.StatusOrderCreated, Location: "Lagos", Note: &note})
	require.NoError(t, err)

	ev, err := st.AppendEventTx(ctx, models.TrackingEvent{ShipmentID: created.ID, Status: models.StatusDelivered, Location: "Abuja"})
	require.NoError(t, err)
	require.Nil(t, ev.Note)

	evs, err := st.ListEvents(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, models.StatusOrderCreated, evs[0].Status)
	require.Equal(t, models.StatusDelivered, evs[1].Status)

	got, err = st.FindShipmentByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, got.CurrentStatus)

	phone := "+234 818 261 1435"
	upd, err := st.UpdateShipment(ctx, created.ID, models.ShipmentFieldsUpdate{SenderPhone: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, upd.SenderPhone)
	require.Equal(t, "Ada", upd.SenderName)
	require.Equal(t, created.CreatedAt.Unix(), upd.CreatedAt.Unix())

	_, err = st.UpdateShipment(ctx, 999999, models.ShipmentFieldsUpdate{SenderPhone: &phone})
	require.True(t, errors.Is(err, models.ErrNotFound))

	require.ErrorIs(t, st.SetCurrentStatus(ctx, 999999, "x"), models.ErrNotFound)

	_, err = st.AppendEventTx(ctx, models.TrackingEvent{ShipmentID: 999999, Status: "x", Location: "y"})
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = st.InsertEvent(ctx, models.TrackingEvent{ShipmentID: 999999, Status: "x", Location: "y"})
	require.ErrorIs(t, err, models.ErrNotFound)
}
