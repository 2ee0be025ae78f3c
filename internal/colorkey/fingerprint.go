package colorkey

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies a snapshot's dimensions and bytes. It is used for
// equality only.
type Fingerprint [blake2b.Size256]byte

// FingerprintOf digests the dimensions, format and pixel buffer of s.
func FingerprintOf(s Snapshot) Fingerprint {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	var hdr [9]byte
	binary.LittleEndian.PutUint32(hdr[0:4], s.Width)
	binary.LittleEndian.PutUint32(hdr[4:8], s.Height)
	hdr[8] = byte(s.Format)
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(s.Pix)

	var fp Fingerprint
	h.Sum(fp[:0])
	return fp
}

// IsZero reports whether fp is the zero value ("nothing recorded").
func (fp Fingerprint) IsZero() bool { return fp == Fingerprint{} }

// String returns a short hex prefix for logs.
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:6])
}

// MarshalText makes fingerprints render as short hex in structured logs.
func (fp Fingerprint) MarshalText() ([]byte, error) {
	return []byte(fp.String()), nil
}
