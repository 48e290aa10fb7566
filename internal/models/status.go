package models

import "strings"

// Статусы, которые админка предлагает по умолчанию. Список открытый: принимается любая непустая строка.
const (
	StatusOrderCreated      = "Order Created"
	StatusPickedUp          = "Picked Up"
	StatusInTransit         = "In Transit"
	StatusArrivedAtFacility = "Arrived at Facility"
	StatusOutForDelivery    = "Out for Delivery"
	StatusDelivered         = "Delivered"
	StatusException         = "Exception"
)

const InitialEventNote = "Shipment request initialized"

var KnownStatuses = []string{
	StatusOrderCreated,
	StatusPickedUp,
	StatusInTransit,
	StatusArrivedAtFacility,
	StatusOutForDelivery,
	StatusDelivered,
	StatusException,
}

type StatusTone string

const (
	ToneDelivered StatusTone = "delivered"
	ToneTransit   StatusTone = "transit"
	TonePending   StatusTone = "pending"
	ToneException StatusTone = "exception"
	ToneNeutral   StatusTone = "neutral"
)

// ToneOf buckets a free-text status by keyword. Order matters: "delivered" wins over "way".
func ToneOf(status string) StatusTone {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "delivered"):
		return ToneDelivered
	case strings.Contains(s, "transit"), strings.Contains(s, "shipped"), strings.Contains(s, "way"):
		return ToneTransit
	case strings.Contains(s, "pending"), strings.Contains(s, "processing"):
		return TonePending
	case strings.Contains(s, "exception"), strings.Contains(s, "hold"), strings.Contains(s, "fail"):
		return ToneException
	default:
		return ToneNeutral
	}
}

func IsFinalStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusDelivered)
}
