//go:build linux

package clip

import (
	"bytes"
	"log/slog"
	"time"

	"golang.design/x/clipboard"

	"go.klb.dev/keyclip/internal/colorkey"
)

const linuxPollInterval = 250 * time.Millisecond

type linuxBackend struct {
	watchCh chan struct{}
	done    chan struct{}
	lastImg []byte
}

// New returns the Linux clipboard backend, or a headless backend if the
// display environment is unavailable (e.g. a server without X11 or Wayland).
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands (status, enable, ...) don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless(err)
	}
	b := &linuxBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.poll()
	return b
}

func (b *linuxBackend) Name() string { return "Linux clipboard (poll)" }

func (b *linuxBackend) poll() {
	t := time.NewTicker(linuxPollInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			img := clipboard.Read(clipboard.FmtImage)
			if !bytes.Equal(img, b.lastImg) {
				b.lastImg = img
				select {
				case b.watchCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (b *linuxBackend) Read() (*colorkey.Snapshot, error) { return readImage() }
func (b *linuxBackend) Write(s colorkey.Snapshot) error   { return writeImage(s) }
func (b *linuxBackend) Watch() <-chan struct{}            { return b.watchCh }
func (b *linuxBackend) Close()                            { close(b.done) }
