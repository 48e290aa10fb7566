package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/config"
	shipmentsrpc "github.com/BearBump/ShipTrack/internal/api/shipments_rpc"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/BearBump/ShipTrack/internal/storage/sqliteshipments"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

func memoryConfig() *config.Config {
	return &config.Config{
		ShipTrack: config.ShipTrackConfig{
			StoreDriver: "memory",
			AuthSecret:  "test-secret",
		},
		Contact: config.ContactConfig{WhatsAppNumber: "2348182611435"},
	}
}

func startShipAPI(t *testing.T, swaggerPath string) (grpcAddr, httpAddr string, d *shipAPIDeps) {
	t.Helper()
	d, err := buildDeps(memoryConfig())
	require.NoError(t, err)
	t.Cleanup(d.Close)

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan [2]string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runShipAPI(ctx, shipAPIOpts{
			grpcAddr:    "127.0.0.1:0",
			httpAddr:    "127.0.0.1:0",
			swaggerPath: swaggerPath,
			onListen:    func(g, h string) { addrCh <- [2]string{g, h} },
		}, d)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(3 * time.Second):
			t.Error("timeout waiting servers to stop")
		}
	})

	addrs := <-addrCh
	return addrs[0], addrs[1], d
}

func TestRunShipAPI_SwaggerAndHealth(t *testing.T) {
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	_, httpAddr, _ := startShipAPI(t, sw)

	resp, err := http.Get("http://" + httpAddr + "/swagger.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "\"swagger\"")

	resp, err = http.Get("http://" + httpAddr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunShipAPI_MissingSwagger(t *testing.T) {
	d, err := buildDeps(memoryConfig())
	require.NoError(t, err)
	defer d.Close()

	err = runShipAPI(context.Background(), shipAPIOpts{
		grpcAddr:    "127.0.0.1:0",
		httpAddr:    "127.0.0.1:0",
		swaggerPath: filepath.Join(t.TempDir(), "nope.json"),
	}, d)
	require.Error(t, err)
}

func TestRunShipAPI_HTTPAndGRPCShareStore(t *testing.T) {
	grpcAddr, httpAddr, d := startShipAPI(t, "")
	token, err := d.auth.Issue("ops")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "http://"+httpAddr+"/api/v1/admin/shipments", strings.NewReader(
		`{"sender_name":"Ada","receiver_name":"Chidi","origin":"Lagos","destination":"Abuja"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var created struct {
		Shipment struct {
			TrackingNumber string `json:"tracking_number"`
		} `json:"shipment"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	c := shipmentsrpc.NewClient(conn)

	view, err := c.TrackShipment(context.Background(), &shipmentsrpc.TrackShipmentRequest{TrackingNumber: created.Shipment.TrackingNumber})
	require.NoError(t, err)
	require.Len(t, view.Events, 1)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
	got, err := c.GetShipment(ctx, &shipmentsrpc.GetShipmentRequest{TrackingNumber: created.Shipment.TrackingNumber})
	require.NoError(t, err)
	require.Equal(t, "Lagos", got.Shipment.Origin)
}

func TestOpenStore(t *testing.T) {
	st, closeFn, err := openStore(&config.Config{ShipTrack: config.ShipTrackConfig{StoreDriver: "memory"}})
	require.NoError(t, err)
	defer closeFn()
	_, ok := st.(*memshipments.Store)
	require.True(t, ok)

	st, closeFn, err = openStore(&config.Config{ShipTrack: config.ShipTrackConfig{
		StoreDriver: "SQLite",
		SQLitePath:  filepath.Join(t.TempDir(), "ship.db"),
	}})
	require.NoError(t, err)
	defer closeFn()
	_, ok = st.(*sqliteshipments.Store)
	require.True(t, ok)

	_, _, err = openStore(&config.Config{ShipTrack: config.ShipTrackConfig{StoreDriver: "mongo"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown store driver "mongo"`)
	require.Contains(t, fmt.Sprintf("%+v", err), "bootstrap.go")
}

func TestWithDefaults(t *testing.T) {
	t.Setenv("swaggerPath", "/etc/shiptrack/swagger.json")
	opts := withDefaults(&config.Config{})
	require.Equal(t, ":50051", opts.grpcAddr)
	require.Equal(t, ":8080", opts.httpAddr)
	require.Equal(t, "/etc/shiptrack/swagger.json", opts.swaggerPath)
	require.Equal(t, 60, opts.lookupPerMinute)
	require.False(t, opts.trustProxy)

	opts = withDefaults(&config.Config{ShipTrack: config.ShipTrackConfig{TrustProxyHeaders: true}})
	require.True(t, opts.trustProxy)
}
