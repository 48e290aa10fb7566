package main

import (
	"github.com/BearBump/ShipTrack/config"
	"github.com/BearBump/ShipTrack/internal/integrations/emailrelay"
)

// без kafka заявки с формы уходят в relay прямо из API
func newRelay(cfg *config.Config) *emailrelay.Client {
	return emailrelay.New(cfg.Contact.RelayURL, cfg.Contact.RelayAPIKey)
}
