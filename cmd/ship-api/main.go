package main

import (
	"context"
	"errors"
	"fmt"
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

	deps, err := buildDeps(cfg)
	if err != nil {
		panic(err)
	}
	defer deps.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runShipAPI(ctx, withDefaults(cfg), deps); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
