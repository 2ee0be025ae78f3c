// Package orchestrator runs the clipboard colour-key loop: it watches the
// clipboard for new images, keys out the configured colour, and writes the
// result back without reacting to its own writes.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.klb.dev/keyclip/internal/clip"
	"go.klb.dev/keyclip/internal/colorkey"
)

// DefaultInterval is the fallback poll period used alongside backend
// change notifications.
const DefaultInterval = 500 * time.Millisecond

// Clipboard is the clipboard capability the loop consumes.
type Clipboard interface {
	// Read returns the current clipboard image, or nil if there is none.
	Read() (*colorkey.Snapshot, error)
	Write(colorkey.Snapshot) error
}

// Settings is the externally owned configuration the loop observes. Both
// methods must be safe to call concurrently with writers.
type Settings interface {
	Enabled() bool
	Color() colorkey.Color
}

// State is the loop's position within a cycle.
type State int32

const (
	Idle State = iota
	Processing
)

func (s State) String() string {
	if s == Processing {
		return "processing"
	}
	return "idle"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome describes how a cycle ended.
type Outcome int

const (
	OutcomeDisabled   Outcome = iota // enabled flag off, nothing read
	OutcomeNoImage                   // clipboard holds no image
	OutcomeDuplicate                 // unchanged since last look, or our own write
	OutcomeUnchanged                 // converted, but no pixel changed; not written
	OutcomeConverted                 // converted and written back
	OutcomeFailed                    // conversion or write-back failed
	OutcomeReadFailed                // clipboard could not be read
)

var outcomeNames = [...]string{
	OutcomeDisabled:   "disabled",
	OutcomeNoImage:    "no_image",
	OutcomeDuplicate:  "duplicate",
	OutcomeUnchanged:  "unchanged",
	OutcomeConverted:  "converted",
	OutcomeFailed:     "failed",
	OutcomeReadFailed: "read_failed",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Options tunes the loop.
type Options struct {
	// Interval is the fallback poll period. Default: DefaultInterval.
	Interval time.Duration
	// Notify delivers clipboard change hints, typically clip.Backend.Watch().
	// May be nil.
	Notify <-chan struct{}
	// Logger overrides slog.Default().
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Orchestrator owns the loop state. Cycles are serialised; settings are
// read through the Settings port and never locked.
type Orchestrator struct {
	clip Clipboard
	cfg  Settings
	opts Options
	log  *slog.Logger

	// cycleMu serialises cycles and guards the fields below it.
	cycleMu      sync.Mutex
	lastWritten  colorkey.Fingerprint // our most recent write-back
	lastObserved colorkey.Fingerprint // what the clipboard held at our last look
	readErr      string               // last read failure already reported

	state  atomic.Int32
	forget atomic.Bool
	kick   chan struct{}

	cycles      atomic.Int64
	converted   atomic.Int64
	duplicates  atomic.Int64
	failures    atomic.Int64
	keyedPixels atomic.Int64
	lastAt      atomic.Int64 // UnixNano of last conversion
	lastErr     atomic.Pointer[string]
}

// New returns an idle Orchestrator. Call Run to start it.
func New(cb Clipboard, cfg Settings, opts Options) *Orchestrator {
	opts.defaults()
	return &Orchestrator{
		clip: cb,
		cfg:  cfg,
		opts: opts,
		log:  opts.Logger,
		kick: make(chan struct{}, 1),
	}
}

// State reports whether a cycle is currently converting.
func (o *Orchestrator) State() State { return State(o.state.Load()) }

// Retry forgets the last observed clipboard image so that it is attempted
// again on the next cycle, and schedules that cycle. The record of our own
// last write is kept.
func (o *Orchestrator) Retry() {
	o.forget.Store(true)
	select {
	case o.kick <- struct{}{}:
	default:
	}
}

// Run drives cycles from change notifications, the poll ticker and Retry
// until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	t := time.NewTicker(o.opts.Interval)
	defer t.Stop()

	o.log.Info("conversion loop started", "interval", o.opts.Interval)
	o.Cycle()
	for {
		select {
		case <-ctx.Done():
			o.log.Info("conversion loop stopped")
			return ctx.Err()
		case <-o.opts.Notify:
		case <-t.C:
		case <-o.kick:
		}
		o.Cycle()
	}
}

// Cycle runs one detect-convert-write pass.
func (o *Orchestrator) Cycle() Outcome {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()
	o.cycles.Add(1)

	if o.forget.Swap(false) {
		o.lastObserved = colorkey.Fingerprint{}
	}
	if !o.cfg.Enabled() {
		return OutcomeDisabled
	}

	snap, err := o.clip.Read()
	if err != nil {
		o.reportReadFailure(err)
		return OutcomeReadFailed
	}
	o.readErr = ""
	if snap == nil {
		o.lastObserved = colorkey.Fingerprint{}
		return OutcomeNoImage
	}

	in := colorkey.FingerprintOf(*snap)
	if in == o.lastWritten || in == o.lastObserved {
		o.lastObserved = in
		o.duplicates.Add(1)
		return OutcomeDuplicate
	}
	o.lastObserved = in

	o.state.Store(int32(Processing))
	defer o.state.Store(int32(Idle))

	target := o.cfg.Color()
	out, keyed, err := colorkey.Convert(*snap, target)
	if err != nil {
		o.fail("convert", in, err)
		return OutcomeFailed
	}
	if bytes.Equal(out.Pix, snap.Pix) {
		o.log.Debug("clipboard image has nothing to key",
			"size", sizeOf(*snap), "target", target.String(), "fingerprint", in)
		return OutcomeUnchanged
	}
	if err := o.clip.Write(out); err != nil {
		o.fail("write", in, err)
		return OutcomeFailed
	}

	outFP := colorkey.FingerprintOf(out)
	o.lastWritten = outFP
	o.converted.Add(1)
	o.keyedPixels.Add(int64(keyed))
	o.lastAt.Store(time.Now().UnixNano())
	o.lastErr.Store(nil)
	logConverted(o.log, *snap, target, keyed, in, outFP)
	return OutcomeConverted
}

func (o *Orchestrator) fail(stage string, fp colorkey.Fingerprint, err error) {
	o.failures.Add(1)
	msg := stage + ": " + err.Error()
	o.lastErr.Store(&msg)
	o.log.Error("clipboard image not converted",
		"stage", stage,
		"kind", Classify(err),
		"fingerprint", fp,
		"err", err,
	)
}

// reportReadFailure logs a read error at WARN the first time it is seen and
// at DEBUG while the same error keeps repeating.
func (o *Orchestrator) reportReadFailure(err error) {
	msg := err.Error()
	if msg == o.readErr {
		o.log.Debug("clipboard read failed", "kind", Classify(err), "err", err)
		return
	}
	o.readErr = msg
	o.failures.Add(1)
	o.lastErr.Store(&msg)
	o.log.Warn("clipboard read failed", "kind", Classify(err), "err", err)
}

// Classify maps an error onto the loop's failure taxonomy for logs and stats.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, clip.ErrUnavailable):
		return "clipboard_unavailable"
	case errors.Is(err, colorkey.ErrEmptyImage):
		return "empty_image"
	case errors.Is(err, colorkey.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, colorkey.ErrInvalidColor):
		return "invalid_color"
	default:
		return "unknown"
	}
}
