package control

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const authHeader = "authorization"

// TokenAuth returns an interceptor that requires "authorization: Bearer
// <token>" metadata on every call. An empty token disables the check.
func TokenAuth(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if token == "" {
			return next(ctx, req)
		}
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		if err := checkBearer(token, md.Get(authHeader)); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func checkBearer(token string, vals []string) error {
	if token == "" {
		return nil
	}
	if len(vals) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}
	got := strings.TrimPrefix(vals[0], "Bearer ")
	if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
		return status.Error(codes.Unauthenticated, "invalid token")
	}
	return nil
}

// BearerToken attaches a bearer token to every outgoing call.
type BearerToken string

func (t BearerToken) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	if t == "" {
		return nil, nil
	}
	return map[string]string{authHeader: "Bearer " + string(t)}, nil
}

// RequireTransportSecurity is false: the control channel is a local socket
// or a loopback/LAN listener without TLS.
func (BearerToken) RequireTransportSecurity() bool { return false }
