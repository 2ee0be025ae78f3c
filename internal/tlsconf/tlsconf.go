// Package tlsconf derives TLS credentials for the control listener from a
// passphrase (the control token).
//
// The private key is derived deterministically via HKDF, so the daemon and
// its clients arrive at the same key pair from the same passphrase. The
// certificate itself is random and self-signed; clients pin the server's
// public key instead of verifying a chain.
//
//	HKDF-SHA256(ikm=passphrase, salt="keyclip-tls-v1", info="control-key")
//	→ 40 bytes → reduced into [1, N-1] → ECDSA P-256 scalar
package tlsconf

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"time"

	"golang.org/x/crypto/hkdf"
	"google.golang.org/grpc/credentials"
)

// DefaultPassphrase is used when the control API runs without a token.
const DefaultPassphrase = "keyclip"

const serverName = "keyclip"

// ErrKeyMismatch is returned when the server's public key was not derived
// from the client's passphrase.
var ErrKeyMismatch = errors.New("tlsconf: server public key does not match passphrase")

func passphraseOr(p string) string {
	if p == "" {
		return DefaultPassphrase
	}
	return p
}

// ServerConfig returns a *tls.Config for the control listener.
//
// NextProtos ["h2", "http/1.1"] lets ALPN negotiate correctly for both gRPC
// and HTTP/JSON clients on the same listener.
func ServerConfig(passphrase string) (*tls.Config, error) {
	key, err := deriveKey(passphraseOr(passphrase))
	if err != nil {
		return nil, err
	}
	der, err := selfSignedCert(key)
	if err != nil {
		return nil, fmt.Errorf("tlsconf: cert: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
		NextProtos:   []string{"h2", "http/1.1"},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// ClientConfig returns a *tls.Config that accepts only a server whose public
// key was derived from passphrase.
func ClientConfig(passphrase string) (*tls.Config, error) {
	key, err := deriveKey(passphraseOr(passphrase))
	if err != nil {
		return nil, err
	}
	want, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("tlsconf: marshal pubkey: %w", err)
	}
	return &tls.Config{
		// Chain verification is replaced by the public key pin below.
		InsecureSkipVerify: true, //nolint:gosec
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS13,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return errors.New("tlsconf: server presented no certificate")
			}
			cert, err := x509.ParseCertificate(rawCerts[0])
			if err != nil {
				return fmt.Errorf("tlsconf: parse server cert: %w", err)
			}
			got, err := x509.MarshalPKIXPublicKey(cert.PublicKey)
			if err != nil {
				return fmt.Errorf("tlsconf: marshal server pubkey: %w", err)
			}
			if !bytes.Equal(got, want) {
				return ErrKeyMismatch
			}
			return nil
		},
	}, nil
}

// ClientCredentials wraps ClientConfig for grpc.WithTransportCredentials.
func ClientCredentials(passphrase string) (credentials.TransportCredentials, error) {
	cfg, err := ClientConfig(passphrase)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}

// Listen opens a TCP listener on addr that terminates TLS with ServerConfig.
func Listen(addr, passphrase string) (net.Listener, error) {
	cfg, err := ServerConfig(passphrase)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return tls.NewListener(ln, cfg), nil
}

func deriveKey(passphrase string) (*ecdsa.PrivateKey, error) {
	r := hkdf.New(sha256.New, []byte(passphrase), []byte("keyclip-tls-v1"), []byte("control-key"))
	buf := make([]byte, 40)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("tlsconf: hkdf read: %w", err)
	}

	n := elliptic.P256().Params().N
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, new(big.Int).Sub(n, big.NewInt(1)))
	k.Add(k, big.NewInt(1))

	key, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), k.FillBytes(make([]byte, 32)))
	if err != nil {
		return nil, fmt.Errorf("tlsconf: derive key: %w", err)
	}
	return key, nil
}

// selfSignedCert returns a DER certificate for key. Only the public key is
// checked by clients.
func selfSignedCert(key *ecdsa.PrivateKey) ([]byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: serverName},
		DNSNames:              []string{serverName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	return x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
}
