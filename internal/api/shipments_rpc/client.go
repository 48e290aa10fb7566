package shipments_rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client: клиент ShipmentService поверх JSON-кодека (используется shipctl).
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TrackShipment(ctx context.Context, in *TrackShipmentRequest, opts ...grpc.CallOption) (*TrackingViewReply, error) {
	return invoke[TrackingViewReply](ctx, c.cc, FullMethodTrackShipment, in, opts...)
}

func (c *Client) CreateShipment(ctx context.Context, in *CreateShipmentRequest, opts ...grpc.CallOption) (*ShipmentReply, error) {
	return invoke[ShipmentReply](ctx, c.cc, FullMethodCreateShipment, in, opts...)
}

func (c *Client) GetShipment(ctx context.Context, in *GetShipmentRequest, opts ...grpc.CallOption) (*ShipmentReply, error) {
	return invoke[ShipmentReply](ctx, c.cc, FullMethodGetShipment, in, opts...)
}

func (c *Client) UpdateShipment(ctx context.Context, in *UpdateShipmentRequest, opts ...grpc.CallOption) (*ShipmentReply, error) {
	return invoke[ShipmentReply](ctx, c.cc, FullMethodUpdateShipment, in, opts...)
}

func (c *Client) AppendEvent(ctx context.Context, in *AppendEventRequest, opts ...grpc.CallOption) (*EventReply, error) {
	return invoke[EventReply](ctx, c.cc, FullMethodAppendEvent, in, opts...)
}

func (c *Client) ListEvents(ctx context.Context, in *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsReply, error) {
	return invoke[ListEventsReply](ctx, c.cc, FullMethodListEvents, in, opts...)
}
