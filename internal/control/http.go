package control

import (
	"context"
	"io"
	"net/http"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NewGateway returns the HTTP/JSON routes for srv:
//
//	GET  /v1/status
//	POST /v1/enable
//	POST /v1/disable
//	PUT  /v1/color   {"color": "#rrggbb"}
//	POST /v1/retry
//
// Requests must carry "Authorization: Bearer <token>" unless token is empty.
func NewGateway(srv Server, token string) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux()
	routes := []struct {
		method, path string
		call         func(context.Context, *http.Request) (proto.Message, error)
	}{
		{http.MethodGet, "/v1/status", func(ctx context.Context, _ *http.Request) (proto.Message, error) {
			return srv.Status(ctx, &emptypb.Empty{})
		}},
		{http.MethodPost, "/v1/enable", func(ctx context.Context, _ *http.Request) (proto.Message, error) {
			return srv.SetEnabled(ctx, wrapperspb.Bool(true))
		}},
		{http.MethodPost, "/v1/disable", func(ctx context.Context, _ *http.Request) (proto.Message, error) {
			return srv.SetEnabled(ctx, wrapperspb.Bool(false))
		}},
		{http.MethodPut, "/v1/color", func(ctx context.Context, r *http.Request) (proto.Message, error) {
			color, err := colorFromBody(r.Body)
			if err != nil {
				return nil, err
			}
			return srv.SetColor(ctx, wrapperspb.String(color))
		}},
		{http.MethodPost, "/v1/retry", func(ctx context.Context, _ *http.Request) (proto.Message, error) {
			return srv.Retry(ctx, &emptypb.Empty{})
		}},
	}

	for _, rt := range routes {
		call := rt.call
		err := mux.HandlePath(rt.method, rt.path, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			_, outbound := gwruntime.MarshalerForRequest(mux, r)
			if err := checkBearer(token, r.Header.Values(authHeader)); err != nil {
				gwruntime.HTTPError(r.Context(), mux, outbound, w, r, err)
				return
			}
			resp, err := call(r.Context(), r)
			if err != nil {
				gwruntime.HTTPError(r.Context(), mux, outbound, w, r, err)
				return
			}
			buf, err := outbound.Marshal(resp)
			if err != nil {
				gwruntime.HTTPError(r.Context(), mux, outbound, w, r, status.Error(codes.Internal, err.Error()))
				return
			}
			w.Header().Set("Content-Type", outbound.ContentType(resp))
			_, _ = w.Write(buf)
		})
		if err != nil {
			return nil, err
		}
	}
	return mux, nil
}

// colorFromBody reads {"color": "..."} from a request body.
func colorFromBody(body io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 4<<10))
	if err != nil {
		return "", status.Errorf(codes.InvalidArgument, "read body: %v", err)
	}
	var in structpb.Struct
	if err := protojson.Unmarshal(raw, &in); err != nil {
		return "", status.Errorf(codes.InvalidArgument, "body: %v", err)
	}
	v, ok := in.GetFields()["color"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, `body: missing "color"`)
	}
	if _, isStr := v.GetKind().(*structpb.Value_StringValue); !isStr {
		return "", status.Error(codes.InvalidArgument, `body: "color" must be a string`)
	}
	return v.GetStringValue(), nil
}
