// Package clip provides the system clipboard as a source and sink of RGBA
// image snapshots. Build constraints select the implementation:
//
//	clip_darwin.go   macOS via golang.design/x/clipboard + cgo changeCount
//	clip_windows.go  Windows via golang.design/x/clipboard + AddClipboardFormatListener
//	clip_linux.go    Linux via golang.design/x/clipboard, polling only
//	clip_other.go    headless stub
//
// Images cross the OS boundary as PNG; codec.go converts them to and from
// colorkey.Snapshot.
package clip

import (
	"errors"

	"go.klb.dev/keyclip/internal/colorkey"
)

// ErrUnavailable is returned when the clipboard cannot be accessed (no
// display, no session, permission denied).
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard image.
	// Returns nil, nil if the clipboard holds no image (text, empty, ...).
	Read() (*colorkey.Snapshot, error)

	// Write replaces the clipboard contents with s.
	Write(s colorkey.Snapshot) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// may have changed. The channel is never closed. Signals are hints only;
	// callers must still compare what Read returns.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}
