package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/config"
	"github.com/BearBump/ShipTrack/internal/auth"
	"github.com/BearBump/ShipTrack/internal/broker/kafka"
	"github.com/BearBump/ShipTrack/internal/cache"
	"github.com/BearBump/ShipTrack/internal/cache/rediscache"
	"github.com/BearBump/ShipTrack/internal/services/contact"
	"github.com/BearBump/ShipTrack/internal/services/shipments"
	"github.com/BearBump/ShipTrack/internal/services/trackevents"
	"github.com/BearBump/ShipTrack/internal/services/tracknumber"
	"github.com/BearBump/ShipTrack/internal/storage"
	"github.com/BearBump/ShipTrack/internal/storage/memshipments"
	"github.com/BearBump/ShipTrack/internal/storage/pgshipments"
	"github.com/BearBump/ShipTrack/internal/storage/sqliteshipments"
	"github.com/pkg/errors"
)

// shipAPIDeps: всё, что нужно серверам; собирается из конфига в buildDeps.
type shipAPIDeps struct {
	shipments *shipments.Service
	events    *trackevents.Service
	contact   *contact.Service
	auth      *auth.Authenticator
	limiter   *rediscache.RateLimiter

	closers []func()
}

func (d *shipAPIDeps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func withDefaults(cfg *config.Config) shipAPIOpts {
	opts := shipAPIOpts{
		grpcAddr:        cfg.ShipTrack.GRPCAddr,
		httpAddr:        cfg.ShipTrack.HTTPAddr,
		swaggerPath:     cfg.ShipTrack.SwaggerPath,
		lookupPerMinute: cfg.ShipTrack.LookupRateLimitPerMinute,
		trustProxy:      cfg.ShipTrack.TrustProxyHeaders,
	}
	if opts.grpcAddr == "" {
		opts.grpcAddr = ":50051"
	}
	if opts.httpAddr == "" {
		opts.httpAddr = ":8080"
	}
	if opts.swaggerPath == "" {
		opts.swaggerPath = os.Getenv("swaggerPath")
	}
	if opts.lookupPerMinute <= 0 {
		opts.lookupPerMinute = 60
	}
	return opts
}

func buildDeps(cfg *config.Config) (*shipAPIDeps, error) {
	d := &shipAPIDeps{}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, closeStore)

	var viewCache cache.BytesCache
	if addr := cfg.Redis.Addr(); addr != "" {
		rc := rediscache.New(addr)
		rl := rediscache.NewRateLimiter(addr)
		viewCache = rc
		d.limiter = rl
		d.closers = append(d.closers, func() { _ = rc.Close() }, func() { _ = rl.Close() })
	} else {
		slog.Warn("redis is not configured: tracking view cache and lookup rate limit are disabled")
	}

	var (
		statusProducer  trackevents.Producer
		contactProducer contact.Producer
	)
	if brokers := cfg.Kafka.Brokers(); len(brokers) > 0 {
		p := kafka.NewProducer(brokers)
		statusProducer, contactProducer = p, p
		d.closers = append(d.closers, func() { _ = p.Close() })
	} else {
		slog.Warn("kafka is not configured: status change messages are not published")
	}

	viewTTL := time.Duration(cfg.ShipTrack.ViewCacheTTLSeconds) * time.Second
	if viewTTL <= 0 {
		viewTTL = 5 * time.Minute
	}

	d.events = trackevents.New(st, viewCache, statusProducer, cfg.Kafka.StatusChangedTopicName)
	if cfg.ShipTrack.RejectAfterFinal {
		d.events.WithPolicy(trackevents.FinalStatusPolicy{})
	}
	d.shipments = shipments.New(st, d.events, tracknumber.New(), viewCache, viewTTL)

	var relay contact.Relay
	if cfg.Contact.RelayURL != "" {
		relay = newRelay(cfg)
	}
	d.contact = contact.New(contactProducer, relay, cfg.Kafka.ContactSubmittedTopicName, cfg.Contact.WhatsAppNumber)

	d.auth = auth.New(cfg.ShipTrack.AuthSecret, time.Duration(cfg.ShipTrack.AuthTokenTTLMinutes)*time.Minute)
	if strings.TrimSpace(cfg.ShipTrack.AuthSecret) == "" {
		slog.Warn("auth secret is not configured: admin endpoints will reject every request")
	}
	return d, nil
}

func openStore(cfg *config.Config) (storage.Gateway, func(), error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.ShipTrack.StoreDriver)); driver {
	case "", "postgres":
		st, err := openPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "sqlite":
		path := cfg.ShipTrack.SQLitePath
		if path == "" {
			path = "shiptrack.db"
		}
		st, err := sqliteshipments.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "memory":
		slog.Warn("memory store selected: data is lost on restart")
		return memshipments.New(), func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown store driver %q", driver)
	}
}

func openPostgresWithRetry(connString string, wait time.Duration) (*pgshipments.Storage, error) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipments.New(connString)
		if err == nil {
			return st, nil
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	return nil, errors.Wrapf(lastErr, "postgres is not ready after %s", wait)
}
