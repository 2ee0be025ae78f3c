package clip

import (
	"fmt"

	"go.klb.dev/keyclip/internal/colorkey"
)

// headlessBackend stands in when no display server is available (headless
// Linux, containers, CI). It never produces Watch events and every access
// reports ErrUnavailable.
type headlessBackend struct {
	watchCh chan struct{}
	reason  error
}

func newHeadless(reason error) *headlessBackend {
	return &headlessBackend{watchCh: make(chan struct{}), reason: reason}
}

func (b *headlessBackend) Name() string { return "headless (no-op)" }

func (b *headlessBackend) Read() (*colorkey.Snapshot, error) {
	return nil, b.err()
}

func (b *headlessBackend) Write(_ colorkey.Snapshot) error { return b.err() }
func (b *headlessBackend) Watch() <-chan struct{}          { return b.watchCh }
func (b *headlessBackend) Close()                          {}

func (b *headlessBackend) err() error {
	if b.reason == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, b.reason)
}
