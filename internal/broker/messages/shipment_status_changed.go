package messages

import "time"

const (
	TopicShipmentStatusChanged = "shipment.status_changed"
	TopicContactSubmitted      = "contact.submitted"
)

type ShipmentStatusChanged struct {
	MessageID      string    `json:"message_id"`
	ShipmentID     uint64    `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	EventID        uint64    `json:"event_id"`
	Status         string    `json:"status"`
	Location       string    `json:"location"`
	Note           *string   `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
