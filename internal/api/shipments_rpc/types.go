package shipments_rpc

import "github.com/BearBump/ShipTrack/internal/models"

type TrackShipmentRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type CreateShipmentRequest struct {
	TrackingNumber string `json:"tracking_number,omitempty"`
	SenderName     string `json:"sender_name"`
	SenderPhone    string `json:"sender_phone,omitempty"`
	ReceiverName   string `json:"receiver_name"`
	ReceiverPhone  string `json:"receiver_phone,omitempty"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
}

type GetShipmentRequest struct {
	ID             uint64 `json:"id,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

type UpdateShipmentRequest struct {
	ID     uint64                      `json:"id"`
	Fields models.ShipmentFieldsUpdate `json:"fields"`
}

type AppendEventRequest struct {
	ShipmentID uint64 `json:"shipment_id"`
	Status     string `json:"status"`
	Location   string `json:"location"`
	Note       string `json:"note,omitempty"`
}

type ListEventsRequest struct {
	ShipmentID uint64 `json:"shipment_id"`
}

type ShipmentReply struct {
	Shipment *models.Shipment `json:"shipment"`
	Warning  string           `json:"warning,omitempty"`
}

type EventReply struct {
	Event   *models.TrackingEvent `json:"event"`
	Warning string                `json:"warning,omitempty"`
}

type ListEventsReply struct {
	Events []*models.TrackingEvent `json:"events"`
}

type TrackingViewReply = models.TrackingView
