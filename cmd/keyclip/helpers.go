package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/keyclip/internal/control"
	"go.klb.dev/keyclip/internal/ipc"
	"go.klb.dev/keyclip/internal/tlsconf"
)

const callTimeout = 5 * time.Second

var errNoDaemon = errors.New("no keyclip daemon running (start one with \"keyclip run\")")

// dialControl connects to the daemon: over TCP when --addr is set, else via
// the local IPC socket. It returns the connection and a description of the
// transport used.
func dialControl(v *viper.Viper) (*grpc.ClientConn, string, error) {
	token := v.GetString("token")
	bearer := grpc.WithPerRPCCredentials(control.BearerToken(token))

	if addr := v.GetString("addr"); addr != "" {
		creds, err := tlsconf.ClientCredentials(token)
		if err != nil {
			return nil, "", err
		}
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds), bearer)
		if err != nil {
			return nil, "", fmt.Errorf("dial %s: %w", addr, err)
		}
		return conn, fmt.Sprintf("tls (%s)", addr), nil
	}

	if !ipc.IsRunning() {
		return nil, "", errNoDaemon
	}
	// The socket is local and owner-restricted by the OS; the token is only
	// checked if the daemon was started with one.
	conn, err := grpc.NewClient("passthrough:///keyclip",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(ipc.Dial),
		bearer,
	)
	if err != nil {
		return nil, "", fmt.Errorf("dial ipc: %w", err)
	}
	return conn, fmt.Sprintf("ipc (%s)", ipc.SocketPath()), nil
}

// withControl dials the daemon and runs fn with a bounded context.
func withControl(v *viper.Viper, fn func(context.Context, *control.Client, string) error) error {
	conn, transport, err := dialControl(v)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return fn(ctx, control.NewClient(conn), transport)
}
