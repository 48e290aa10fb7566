package main

import (
	"context"
	"log/slog"

	"github.com/BearBump/ShipTrack/config"
	"github.com/BearBump/ShipTrack/internal/broker/kafka"
	"github.com/BearBump/ShipTrack/internal/cache/rediscache"
	"github.com/BearBump/ShipTrack/internal/integrations/emailrelay"
	"github.com/BearBump/ShipTrack/internal/services/notifier"
)

type consumer interface {
	notifier.Consumer
	Close() error
}

type notifierFactories struct {
	newConsumer func(cfg *config.Config, topics []string) consumer
	newDeduper  func(cfg *config.Config) (notifier.Deduper, func())
	newRelay    func(cfg *config.Config) notifier.Relay
}

func defaultNotifierFactories() notifierFactories {
	return notifierFactories{
		newConsumer: func(cfg *config.Config, topics []string) consumer {
			group := cfg.ShipTrack.KafkaConsumerGroup
			if group == "" {
				group = "ship-notifier"
			}
			return kafka.NewConsumer(cfg.Kafka.Brokers(), topics, group)
		},
		newDeduper: func(cfg *config.Config) (notifier.Deduper, func()) {
			addr := cfg.Redis.Addr()
			if addr == "" {
				return nil, func() {}
			}
			rc := rediscache.New(addr)
			return rc, func() { _ = rc.Close() }
		},
		newRelay: func(cfg *config.Config) notifier.Relay {
			if cfg.Contact.RelayURL == "" {
				return nil
			}
			return emailrelay.New(cfg.Contact.RelayURL, cfg.Contact.RelayAPIKey)
		},
	}
}

func newNotifier(cfg *config.Config, f notifierFactories) (*notifier.Notifier, func()) {
	dedup, closeDedup := f.newDeduper(cfg)
	relay := f.newRelay(cfg)
	if relay == nil {
		slog.Warn("email relay is not configured: messages are only logged")
	}
	n := notifier.New(relay, dedup, cfg.Kafka.StatusChangedTopicName, cfg.Kafka.ContactSubmittedTopicName).
		WithOpsEmail(cfg.Contact.OpsEmail)
	return n, closeDedup
}

func RunShipNotifier(ctx context.Context, cfg *config.Config, n *notifier.Notifier, f notifierFactories) error {
	c := f.newConsumer(cfg, n.Topics())
	defer func() { _ = c.Close() }()

	slog.Info("kafka consumer started", "topics", n.Topics())
	return n.Run(ctx, c)
}
