package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "keyclip.v1.Control"

// Full method names.
const (
	MethodStatus     = "/" + ServiceName + "/Status"
	MethodSetEnabled = "/" + ServiceName + "/SetEnabled"
	MethodSetColor   = "/" + ServiceName + "/SetColor"
	MethodRetry      = "/" + ServiceName + "/Retry"
)

// Server is the server API for the Control service.
type Server interface {
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetEnabled(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error)
	SetColor(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Retry(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// ServiceDesc describes the Control service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: unary(MethodStatus, Server.Status)},
		{MethodName: "SetEnabled", Handler: unary(MethodSetEnabled, Server.SetEnabled)},
		{MethodName: "SetColor", Handler: unary(MethodSetColor, Server.SetColor)},
		{MethodName: "Retry", Handler: unary(MethodRetry, Server.Retry)},
	},
}

// RegisterServer registers srv on s.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed Server method to a grpc.MethodHandler.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](fullMethod string, call func(Server, context.Context, PReq) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Server), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Server), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}
