package trackevents

import (
	"github.com/BearBump/ShipTrack/internal/models"
)

// StatusPolicy решает, можно ли добавить событие с таким статусом.
// Отказ возвращается как *models.ValidationError.
type StatusPolicy interface {
	Check(current *models.Shipment, next string) error
}

// PermissivePolicy: любой статус может идти за любым. Поведение по умолчанию.
type PermissivePolicy struct{}

func (PermissivePolicy) Check(*models.Shipment, string) error { return nil }

// FinalStatusPolicy запрещает события после Delivered.
type FinalStatusPolicy struct{}

func (FinalStatusPolicy) Check(current *models.Shipment, next string) error {
	if current != nil && models.IsFinalStatus(current.CurrentStatus) {
		return &models.ValidationError{Field: "status", Reason: "shipment already delivered"}
	}
	return nil
}
