// Package ipc provides the local control channel between keyclip CLI
// sub-commands and a running keyclip daemon.
//
// The channel is plain gRPC over a Unix domain socket (a named pipe on
// Windows). The daemon listens; status/enable/disable/color/retry dial it.
package ipc

import (
	"context"
	"net"
	"os"
	"time"
)

// EnvSocket overrides the platform socket path.
const EnvSocket = "KEYCLIP_SOCKET"

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/keyclip.sock, else $TMPDIR/keyclip.sock
//   - Windows:       \\.\pipe\keyclip
func SocketPath() string {
	if s := os.Getenv(EnvSocket); s != "" {
		return s
	}
	return socketPath()
}

// Listen creates a listener on the IPC socket path, removing any stale
// socket left by a crashed daemon first.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the IPC socket. Its signature fits grpc.WithContextDialer;
// the address argument is ignored.
func Dial(ctx context.Context, _ string) (net.Conn, error) {
	return dialIPC(ctx, SocketPath())
}

// IsRunning reports whether a keyclip daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Dial(ctx, "")
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
