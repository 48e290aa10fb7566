package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/BearBump/ShipTrack/config"
	"github.com/BearBump/ShipTrack/internal/api/shipments_rpc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type dialFunc func(addr string) (grpc.ClientConnInterface, func() error, error)

// cli держит глобальные флаги и то, что тесты подменяют.
type cli struct {
	configPath string
	addr       string
	token      string
	timeout    time.Duration

	dial dialFunc
}

func newCLI() *cli {
	return &cli{
		configPath: os.Getenv("configPath"),
		timeout:    10 * time.Second,
		dial: func(addr string) (grpc.ClientConnInterface, func() error, error) {
			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return nil, nil, err
			}
			return conn, conn.Close, nil
		},
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "shipctl",
		Short: "Admin tool for the ShipTrack shipment service",
		Long: `shipctl talks to ship-api over gRPC.

Public lookups (track) need no credentials. Admin commands need a bearer
token: pass --token, set SHIPTRACK_TOKEN, or mint one locally with
"shipctl token issue" when the signing secret is in the config.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "path to YAML config (env SHIPTRACK_* still applies)")
	root.PersistentFlags().StringVar(&c.addr, "addr", "", "ship-api gRPC address (default from config or localhost:50051)")
	root.PersistentFlags().StringVar(&c.token, "token", os.Getenv("SHIPTRACK_TOKEN"), "admin bearer token")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", c.timeout, "per-call timeout")

	root.AddCommand(
		newTokenCmd(c),
		newNumberCmd(),
		newTrackCmd(c),
		newShipmentCmd(c),
		newEventCmd(c),
	)
	return root
}

func (c *cli) loadConfig() (*config.Config, error) {
	return config.LoadConfig(c.configPath)
}

func (c *cli) grpcAddr() string {
	if c.addr != "" {
		return c.addr
	}
	if cfg, err := c.loadConfig(); err == nil && cfg.ShipTrack.GRPCAddr != "" {
		addr := cfg.ShipTrack.GRPCAddr
		// ":50051" из конфига сервера означает порт на localhost
		if addr[0] == ':' {
			addr = "localhost" + addr
		}
		return addr
	}
	return "localhost:50051"
}

// withClient открывает соединение на время одного вызова.
func (c *cli) withClient(cmd *cobra.Command, admin bool, fn func(ctx context.Context, client *shipments_rpc.Client) error) error {
	if admin && c.token == "" {
		return errors.New("admin command: --token or SHIPTRACK_TOKEN is required")
	}

	conn, closeFn, err := c.dial(c.grpcAddr())
	if err != nil {
		return errors.Wrap(err, "dial ship-api")
	}
	defer func() { _ = closeFn() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return fn(ctx, shipments_rpc.NewClient(conn))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
