// Package control is the settings surface of a running keyclip daemon: a
// small gRPC service (keyclip.v1.Control) built from protobuf well-known
// types, plus HTTP/JSON routes for the same operations.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"go.klb.dev/keyclip/internal/colorkey"
	"go.klb.dev/keyclip/internal/orchestrator"
	"go.klb.dev/keyclip/internal/settings"
)

// Loop is the part of the orchestrator the control surface drives.
type Loop interface {
	Stats() orchestrator.Stats
	Retry()
}

// Service implements Server.
type Service struct {
	st      *settings.Store
	loop    Loop
	started time.Time
}

// NewService returns a Service editing st and reporting on loop.
func NewService(st *settings.Store, loop Loop) *Service {
	return &Service{st: st, loop: loop, started: time.Now()}
}

// Status implements Control.Status.
func (s *Service) Status(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	cur := s.st.Current()

	// Round-trip the stats through JSON so the struct tags define the field
	// names in both the gRPC and HTTP views.
	raw, err := json.Marshal(s.loop.Stats())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode stats: %v", err)
	}
	var stats map[string]any
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, status.Errorf(codes.Internal, "encode stats: %v", err)
	}

	out, err := structpb.NewStruct(map[string]any{
		"enabled":    cur.Enabled,
		"color":      cur.Color.Hex(),
		"rgb":        []any{int(cur.Color.R()), int(cur.Color.G()), int(cur.Color.B())},
		"started_at": s.started.UTC().Format(time.RFC3339),
		"stats":      stats,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

// SetEnabled implements Control.SetEnabled.
func (s *Service) SetEnabled(_ context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	next := s.st.SetEnabled(req.GetValue())
	slog.Info("conversion toggled", "settings", next.String())
	return &emptypb.Empty{}, nil
}

// SetColor implements Control.SetColor. Invalid colours are rejected and
// the current one is kept.
func (s *Service) SetColor(_ context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	c, err := colorkey.ParseColor(req.GetValue())
	if err != nil {
		if errors.Is(err, colorkey.ErrInvalidColor) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	next := s.st.SetColor(c)
	slog.Info("target color changed", "settings", next.String())
	return &emptypb.Empty{}, nil
}

// Retry implements Control.Retry.
func (s *Service) Retry(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.loop.Retry()
	slog.Debug("retry requested")
	return &emptypb.Empty{}, nil
}
