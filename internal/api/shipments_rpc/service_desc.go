package shipments_rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "shiptrack.v1.ShipmentService"

const (
	FullMethodTrackShipment  = "/" + ServiceName + "/TrackShipment"
	FullMethodCreateShipment = "/" + ServiceName + "/CreateShipment"
	FullMethodGetShipment    = "/" + ServiceName + "/GetShipment"
	FullMethodUpdateShipment = "/" + ServiceName + "/UpdateShipment"
	FullMethodAppendEvent    = "/" + ServiceName + "/AppendEvent"
	FullMethodListEvents     = "/" + ServiceName + "/ListEvents"
)

// PublicMethods не требуют admin-токена.
var PublicMethods = []string{FullMethodTrackShipment}

type ShipmentServiceServer interface {
	TrackShipment(ctx context.Context, req *TrackShipmentRequest) (*TrackingViewReply, error)
	CreateShipment(ctx context.Context, req *CreateShipmentRequest) (*ShipmentReply, error)
	GetShipment(ctx context.Context, req *GetShipmentRequest) (*ShipmentReply, error)
	UpdateShipment(ctx context.Context, req *UpdateShipmentRequest) (*ShipmentReply, error)
	AppendEvent(ctx context.Context, req *AppendEventRequest) (*EventReply, error)
	ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsReply, error)
}

func unary[Req, Resp any](name string, call func(ShipmentServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ShipmentServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ShipmentServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ShipmentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShipmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("TrackShipment", ShipmentServiceServer.TrackShipment),
		unary("CreateShipment", ShipmentServiceServer.CreateShipment),
		unary("GetShipment", ShipmentServiceServer.GetShipment),
		unary("UpdateShipment", ShipmentServiceServer.UpdateShipment),
		unary("AppendEvent", ShipmentServiceServer.AppendEvent),
		unary("ListEvents", ShipmentServiceServer.ListEvents),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shiptrack/v1/shipments.json",
}

func RegisterShipmentServiceServer(s grpc.ServiceRegistrar, srv ShipmentServiceServer) {
	s.RegisterService(&ShipmentServiceDesc, srv)
}
