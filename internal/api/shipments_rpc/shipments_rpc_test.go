package shipments_rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/internal/auth"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/services/shipments"
	"github.com/BearBump/ShipTrack/internal/services/trackevents"
	"github.com/BearBump/ShipTrack/internal/services/tracknumber"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*Client, context.Context) {
	t.Helper()
	store := memshipments.New()
	events := trackevents.New(store, nil, nil, "")
	svc := shipments.New(store, events, tracknumber.New(), nil, 0)
	authn := auth.New("test-secret", time.Hour)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(authn.UnaryServerInterceptor(PublicMethods...)))
	RegisterShipmentServiceServer(s, New(svc, events))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	token, err := authn.Issue("ops")
	require.NoError(t, err)
	adminCtx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
	return NewClient(conn), adminCtx
}

func TestShipmentsRPC_Flow(t *testing.T) {
	c, adminCtx := startServer(t)

	created, err := c.CreateShipment(adminCtx, &CreateShipmentRequest{
		SenderName: "Ada", ReceiverName: "Chidi", Origin: "Lagos", Destination: "Abuja",
	})
	require.NoError(t, err)
	require.Empty(t, created.Warning)
	sh := created.Shipment
	require.True(t, tracknumber.Valid(sh.TrackingNumber))
	require.Equal(t, models.StatusOrderCreated, sh.CurrentStatus)

	ev, err := c.AppendEvent(adminCtx, &AppendEventRequest{ShipmentID: sh.ID, Status: models.StatusDelivered, Location: "Abuja"})
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, ev.Event.Status)

	view, err := c.TrackShipment(context.Background(), &TrackShipmentRequest{TrackingNumber: sh.TrackingNumber})
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, view.Shipment.CurrentStatus)
	require.Len(t, view.Events, 2)
	require.True(t, view.Delivered)

	list, err := c.ListEvents(adminCtx, &ListEventsRequest{ShipmentID: sh.ID})
	require.NoError(t, err)
	require.Len(t, list.Events, 2)

	dest := "Kano"
	upd, err := c.UpdateShipment(adminCtx, &UpdateShipmentRequest{ID: sh.ID, Fields: models.ShipmentFieldsUpdate{Destination: &dest}})
	require.NoError(t, err)
	require.Equal(t, "Kano", upd.Shipment.Destination)
	require.Equal(t, sh.TrackingNumber, upd.Shipment.TrackingNumber)

	got, err := c.GetShipment(adminCtx, &GetShipmentRequest{TrackingNumber: sh.TrackingNumber})
	require.NoError(t, err)
	require.Equal(t, sh.ID, got.Shipment.ID)
}

func TestShipmentsRPC_Errors(t *testing.T) {
	c, adminCtx := startServer(t)

	_, err := c.CreateShipment(context.Background(), &CreateShipmentRequest{SenderName: "Ada"})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.CreateShipment(adminCtx, &CreateShipmentRequest{SenderName: "Ada"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.TrackShipment(context.Background(), &TrackShipmentRequest{TrackingNumber: "TRK-000000000"})
	require.Equal(t, codes.NotFound, status.Code(err))

	req := &CreateShipmentRequest{TrackingNumber: "TRK-121212121", SenderName: "Ada", ReceiverName: "Chidi", Origin: "Lagos", Destination: "Abuja"}
	_, err = c.CreateShipment(adminCtx, req)
	require.NoError(t, err)
	_, err = c.CreateShipment(adminCtx, req)
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.AppendEvent(adminCtx, &AppendEventRequest{ShipmentID: 999, Status: "Picked Up", Location: "Lagos"})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestToStatus(t *testing.T) {
	require.Equal(t, codes.Unavailable, status.Code(toStatus(models.Transport("select", context.DeadlineExceeded))))
	require.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
}
