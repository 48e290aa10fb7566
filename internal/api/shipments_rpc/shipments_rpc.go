package shipments_rpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BearBump/ShipTrack/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ShipmentService interface {
	CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	GetShipment(ctx context.Context, id uint64) (*models.Shipment, error)
	UpdateShipmentFields(ctx context.Context, id uint64, upd models.ShipmentFieldsUpdate) (*models.Shipment, error)
	GetTrackingView(ctx context.Context, trackingNumber string) (*models.TrackingView, error)
}

type EventService interface {
	AppendEvent(ctx context.Context, shipmentID uint64, in models.AppendEventInput) (*models.TrackingEvent, error)
	ListEventsForShipment(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
}

type ShipmentsRPC struct {
	shipments ShipmentService
	events    EventService
}

var _ ShipmentServiceServer = (*ShipmentsRPC)(nil)

func New(shipments ShipmentService, events EventService) *ShipmentsRPC {
	return &ShipmentsRPC{shipments: shipments, events: events}
}

func (a *ShipmentsRPC) TrackShipment(ctx context.Context, req *TrackShipmentRequest) (*TrackingViewReply, error) {
	v, err := a.shipments.GetTrackingView(ctx, req.TrackingNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	return v, nil
}

func (a *ShipmentsRPC) CreateShipment(ctx context.Context, req *CreateShipmentRequest) (*ShipmentReply, error) {
	sh, err := a.shipments.CreateShipment(ctx, models.ShipmentCreateInput{
		TrackingNumber: req.TrackingNumber,
		SenderName:     req.SenderName,
		SenderPhone:    req.SenderPhone,
		ReceiverName:   req.ReceiverName,
		ReceiverPhone:  req.ReceiverPhone,
		Origin:         req.Origin,
		Destination:    req.Destination,
	})
	if w, ok := models.AsPartialFailure(err); ok {
		return &ShipmentReply{Shipment: sh, Warning: w.Error()}, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &ShipmentReply{Shipment: sh}, nil
}

// GetShipment ищет по id, а если id не задан: по трек-номеру.
func (a *ShipmentsRPC) GetShipment(ctx context.Context, req *GetShipmentRequest) (*ShipmentReply, error) {
	var (
		sh  *models.Shipment
		err error
	)
	if req.ID != 0 {
		sh, err = a.shipments.GetShipment(ctx, req.ID)
	} else {
		sh, err = a.shipments.GetShipmentByTrackingNumber(ctx, req.TrackingNumber)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &ShipmentReply{Shipment: sh}, nil
}

func (a *ShipmentsRPC) UpdateShipment(ctx context.Context, req *UpdateShipmentRequest) (*ShipmentReply, error) {
	sh, err := a.shipments.UpdateShipmentFields(ctx, req.ID, req.Fields)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ShipmentReply{Shipment: sh}, nil
}

func (a *ShipmentsRPC) AppendEvent(ctx context.Context, req *AppendEventRequest) (*EventReply, error) {
	ev, err := a.events.AppendEvent(ctx, req.ShipmentID, models.AppendEventInput{
		Status:   req.Status,
		Location: req.Location,
		Note:     req.Note,
	})
	if w, ok := models.AsPartialFailure(err); ok {
		return &EventReply{Event: ev, Warning: w.Error()}, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &EventReply{Event: ev}, nil
}

func (a *ShipmentsRPC) ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsReply, error) {
	evs, err := a.events.ListEventsForShipment(ctx, req.ShipmentID)
	if err != nil {
		return nil, toStatus(err)
	}
	if evs == nil {
		evs = []*models.TrackingEvent{}
	}
	return &ListEventsReply{Events: evs}, nil
}

func toStatus(err error) error {
	switch {
	case models.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		slog.Error("rpc failed", "error", err)
		return status.Error(codes.Unavailable, "storage unavailable, please try again later")
	}
}
