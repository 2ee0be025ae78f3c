package tlsconf

import (
	"crypto/tls"
	"errors"
	"io"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	a, err := deriveKey("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := deriveKey("s3cret")
	c, _ := deriveKey("other")
	if !a.Equal(b) {
		t.Error("same passphrase produced different keys")
	}
	if a.Equal(c) {
		t.Error("different passphrases produced the same key")
	}
}

func handshake(t *testing.T, serverPass, clientPass string) error {
	t.Helper()
	ln, err := Listen("127.0.0.1:0", serverPass)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.(*tls.Conn).Handshake()
		_, _ = io.Copy(io.Discard, c)
	}()

	cfg, err := ClientConfig(clientPass)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := tls.Dial("tcp", ln.Addr().String(), cfg)
	if err != nil {
		return err
	}
	return conn.Close()
}

func TestHandshake(t *testing.T) {
	if err := handshake(t, "s3cret", "s3cret"); err != nil {
		t.Errorf("matching passphrase: %v", err)
	}
	if err := handshake(t, "", ""); err != nil {
		t.Errorf("default passphrase: %v", err)
	}
	if err := handshake(t, "s3cret", "wrong"); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("mismatched passphrase err = %v, want ErrKeyMismatch", err)
	}
}
