package models

import "time"

type Shipment struct {
	ID             uint64    `json:"id"`
	TrackingNumber string    `json:"tracking_number"`
	SenderName     string    `json:"sender_name"`
	SenderPhone    string    `json:"sender_phone"`
	ReceiverName   string    `json:"receiver_name"`
	ReceiverPhone  string    `json:"receiver_phone"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	CurrentStatus  string    `json:"current_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TrackingEvent struct {
	ID         uint64    `json:"id"`
	ShipmentID uint64    `json:"shipment_id"`
	Status     string    `json:"status"`
	Location   string    `json:"location"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ShipmentCreateInput struct {
	TrackingNumber string
	SenderName     string
	SenderPhone    string
	ReceiverName   string
	ReceiverPhone  string
	Origin         string
	Destination    string
}

// ShipmentFieldsUpdate is a partial update; nil fields are left untouched.
// Identity fields (id, tracking number, created_at) cannot be patched.
type ShipmentFieldsUpdate struct {
	SenderName    *string `json:"sender_name,omitempty"`
	SenderPhone   *string `json:"sender_phone,omitempty"`
	ReceiverName  *string `json:"receiver_name,omitempty"`
	ReceiverPhone *string `json:"receiver_phone,omitempty"`
	Origin        *string `json:"origin,omitempty"`
	Destination   *string `json:"destination,omitempty"`
	CurrentStatus *string `json:"current_status,omitempty"`
}

func (u ShipmentFieldsUpdate) Empty() bool {
	return u.SenderName == nil && u.SenderPhone == nil &&
		u.ReceiverName == nil && u.ReceiverPhone == nil &&
		u.Origin == nil && u.Destination == nil &&
		u.CurrentStatus == nil
}

// Apply copies the non-nil fields onto s.
func (u ShipmentFieldsUpdate) Apply(s *Shipment) {
	if u.SenderName != nil {
		s.SenderName = *u.SenderName
	}
	if u.SenderPhone != nil {
		s.SenderPhone = *u.SenderPhone
	}
	if u.ReceiverName != nil {
		s.ReceiverName = *u.ReceiverName
	}
	if u.ReceiverPhone != nil {
		s.ReceiverPhone = *u.ReceiverPhone
	}
	if u.Origin != nil {
		s.Origin = *u.Origin
	}
	if u.Destination != nil {
		s.Destination = *u.Destination
	}
	if u.CurrentStatus != nil {
		s.CurrentStatus = *u.CurrentStatus
	}
}

type AppendEventInput struct {
	Status   string
	Location string
	Note     string
}

// TrackingView is the public projection of a shipment with its ordered events.
type TrackingView struct {
	Shipment     *Shipment        `json:"shipment"`
	Events       []*TrackingEvent `json:"events"`
	Tone         StatusTone       `json:"tone"`
	LatestIndex  int              `json:"latest_index"`
	StatusInSync bool             `json:"status_in_sync"`
	Delivered    bool             `json:"delivered"`
}

// NewTrackingView assumes events are ordered ascending by created_at.
func NewTrackingView(s *Shipment, events []*TrackingEvent) *TrackingView {
	if events == nil {
		events = []*TrackingEvent{}
	}
	v := &TrackingView{
		Shipment:     s,
		Events:       events,
		Tone:         ToneOf(s.CurrentStatus),
		LatestIndex:  len(events) - 1,
		StatusInSync: true,
		Delivered:    IsFinalStatus(s.CurrentStatus),
	}
	if len(events) > 0 {
		v.StatusInSync = events[len(events)-1].Status == s.CurrentStatus
	}
	return v
}
