//go:build !windows

package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// shortSocket returns a socket path short enough for sun_path limits.
func shortSocket(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestSocketPath(t *testing.T) {
	t.Setenv(EnvSocket, "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := SocketPath(); got != "/run/user/1000/keyclip.sock" {
		t.Errorf("SocketPath() = %q", got)
	}

	t.Setenv(EnvSocket, "/tmp/custom.sock")
	if got := SocketPath(); got != "/tmp/custom.sock" {
		t.Errorf("SocketPath() with override = %q", got)
	}
}

func TestListenDial(t *testing.T) {
	path := shortSocket(t)
	t.Setenv(EnvSocket, path)

	if IsRunning() {
		t.Fatal("IsRunning() = true before Listen")
	}

	// A stale file from a crashed run must not block Listen.
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	ln, err := Listen()
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{}, 1)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
			select {
			case accepted <- struct{}{}:
			default:
			}
		}
	}()

	c, err := Dial(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	_ = c.Close()
	<-accepted

	if !IsRunning() {
		t.Error("IsRunning() = false while listening")
	}
}
