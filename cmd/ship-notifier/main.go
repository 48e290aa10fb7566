package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/ShipTrack/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	f := defaultNotifierFactories()
	n, closeDedup := newNotifier(cfg, f)
	defer closeDedup()

	go func() {
		err := runNotifierHTTPServer(ctx, notifierHTTPOpts{
			httpAddr: cfg.ShipTrack.NotifierHTTPAddr,
			notifier: n,
			cfg:      cfg,
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("notifier http server stopped", "error", err)
		}
	}()

	if err := RunShipNotifier(ctx, cfg, n, f); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
