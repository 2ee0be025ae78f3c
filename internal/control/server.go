package control

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

// Endpoint serves the Control service over gRPC and, on TCP listeners,
// the HTTP/JSON routes as well.
type Endpoint struct {
	grpc *grpc.Server
	http *http.Server

	mu    sync.Mutex
	muxed []net.Listener
}

// NewEndpoint builds the gRPC server and HTTP gateway for srv. An empty
// token disables authentication.
func NewEndpoint(srv Server, token string) (*Endpoint, error) {
	gs := grpc.NewServer(grpc.UnaryInterceptor(TokenAuth(token)))
	RegisterServer(gs, srv)

	mux, err := NewGateway(srv, token)
	if err != nil {
		return nil, err
	}
	// The muxed listener is usually TLS-terminated in front of cmux, so the
	// HTTP server only sees plaintext connections; h2 clients arrive with
	// prior knowledge.
	protos := new(http.Protocols)
	protos.SetHTTP1(true)
	protos.SetUnencryptedHTTP2(true)
	return &Endpoint{
		grpc: gs,
		http: &http.Server{Handler: mux, Protocols: protos, ReadHeaderTimeout: 5 * time.Second},
	}, nil
}

// ServeGRPC serves gRPC only, as on the local IPC socket. It blocks until
// ln fails or Stop is called.
func (e *Endpoint) ServeGRPC(ln net.Listener) error {
	return e.grpc.Serve(ln)
}

// ServeMux serves gRPC and HTTP on one listener, routing by protocol. ln may
// be a TLS listener from tlsconf.Listen. It blocks until ln fails or Stop
// is called.
func (e *Endpoint) ServeMux(ln net.Listener) error {
	e.mu.Lock()
	e.muxed = append(e.muxed, ln)
	e.mu.Unlock()

	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	go func() {
		if err := e.grpc.Serve(grpcL); err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, cmux.ErrListenerClosed) {
			slog.Debug("control grpc listener stopped", "err", err)
		}
	}()
	go func() {
		if err := e.http.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			slog.Debug("control http listener stopped", "err", err)
		}
	}()

	err := m.Serve()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Stop closes every listener and drops open connections.
func (e *Endpoint) Stop() {
	e.mu.Lock()
	for _, ln := range e.muxed {
		_ = ln.Close()
	}
	e.muxed = nil
	e.mu.Unlock()

	_ = e.http.Close()
	e.grpc.Stop()
}
