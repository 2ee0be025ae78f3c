// Package settings owns the user-facing configuration that the conversion
// loop observes: the enabled flag and the target colour.
//
// Values are held in a Store as an immutable snapshot behind an atomic
// pointer. Writers (config reloads, the control API) swap whole snapshots;
// the loop reads them without taking any lock.
package settings

import (
	"fmt"
	"sync/atomic"

	"go.klb.dev/keyclip/internal/colorkey"
)

// Settings is one consistent set of user settings.
type Settings struct {
	Enabled bool
	Color   colorkey.Color
}

// Default is what a fresh install runs with.
func Default() Settings {
	return Settings{Enabled: true, Color: colorkey.White}
}

// Store is the Config Port implementation. The zero value is not usable;
// use NewStore.
type Store struct {
	cur      atomic.Pointer[Settings]
	onChange atomic.Pointer[func(Settings)]
}

// NewStore returns a Store holding s.
func NewStore(s Settings) *Store {
	st := &Store{}
	st.cur.Store(&s)
	return st
}

// Current returns the latest snapshot.
func (s *Store) Current() Settings { return *s.cur.Load() }

// Enabled reports the latest enabled flag.
func (s *Store) Enabled() bool { return s.cur.Load().Enabled }

// Color returns the latest target colour.
func (s *Store) Color() colorkey.Color { return s.cur.Load().Color }

// SetEnabled flips the enabled flag, keeping the colour.
func (s *Store) SetEnabled(enabled bool) Settings {
	return s.update(func(v *Settings) { v.Enabled = enabled })
}

// SetColor replaces the target colour, keeping the enabled flag.
func (s *Store) SetColor(c colorkey.Color) Settings {
	return s.update(func(v *Settings) { v.Color = c })
}

// Replace swaps in a complete snapshot.
func (s *Store) Replace(next Settings) {
	prev := s.cur.Swap(&next)
	if *prev != next {
		s.notify(next)
	}
}

// OnChange registers fn to be called after every effective change. Only one
// callback is kept; a later call replaces it.
func (s *Store) OnChange(fn func(Settings)) {
	s.onChange.Store(&fn)
}

func (s *Store) update(mut func(*Settings)) Settings {
	for {
		old := s.cur.Load()
		next := *old
		mut(&next)
		if next == *old {
			return next
		}
		if s.cur.CompareAndSwap(old, &next) {
			s.notify(next)
			return next
		}
	}
}

func (s *Store) notify(v Settings) {
	if fn := s.onChange.Load(); fn != nil && *fn != nil {
		(*fn)(v)
	}
}

func (v Settings) String() string {
	state := "disabled"
	if v.Enabled {
		state = "enabled"
	}
	return fmt.Sprintf("%s, target %s", state, v.Color)
}
