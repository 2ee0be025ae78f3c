package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the Control service on a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client using cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Status(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodStatus, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetEnabled(ctx context.Context, enabled bool, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MethodSetEnabled, wrapperspb.Bool(enabled), new(emptypb.Empty), opts...)
}

func (c *Client) SetColor(ctx context.Context, color string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MethodSetColor, wrapperspb.String(color), new(emptypb.Empty), opts...)
}

func (c *Client) Retry(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MethodRetry, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}
