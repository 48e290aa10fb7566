package shipments

import (
	"strings"

	"github.com/BearBump/ShipTrack/internal/models"
)

func trimCreateInput(in models.ShipmentCreateInput) models.ShipmentCreateInput {
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.SenderPhone = strings.TrimSpace(in.SenderPhone)
	in.ReceiverName = strings.TrimSpace(in.ReceiverName)
	in.ReceiverPhone = strings.TrimSpace(in.ReceiverPhone)
	in.Origin = strings.TrimSpace(in.Origin)
	in.Destination = strings.TrimSpace(in.Destination)
	return in
}

func validateCreateInput(in models.ShipmentCreateInput) error {
	required := []struct {
		field string
		value string
	}{
		{"sender_name", in.SenderName},
		{"receiver_name", in.ReceiverName},
		{"origin", in.Origin},
		{"destination", in.Destination},
	}
	for _, r := range required {
		if r.value == "" {
			return models.Required(r.field)
		}
	}
	return nil
}

// normalizeUpdate тримит значения и не даёт обнулить обязательные поля.
func normalizeUpdate(upd models.ShipmentFieldsUpdate) (models.ShipmentFieldsUpdate, error) {
	fields := []struct {
		name     string
		ptr      **string
		required bool
	}{
		{"sender_name", &upd.SenderName, true},
		{"sender_phone", &upd.SenderPhone, false},
		{"receiver_name", &upd.ReceiverName, true},
		{"receiver_phone", &upd.ReceiverPhone, false},
		{"origin", &upd.Origin, true},
		{"destination", &upd.Destination, true},
		{"current_status", &upd.CurrentStatus, true},
	}
	for _, f := range fields {
		if *f.ptr == nil {
			continue
		}
		v := strings.TrimSpace(**f.ptr)
		if v == "" && f.required {
			return upd, models.Required(f.name)
		}
		*f.ptr = &v
	}
	return upd, nil
}
