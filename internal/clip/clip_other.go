//go:build !darwin && !windows && !linux

package clip

import "errors"

// New returns a no-op backend; this platform has no clipboard integration.
func New() Backend {
	return newHeadless(errors.New("unsupported platform"))
}
