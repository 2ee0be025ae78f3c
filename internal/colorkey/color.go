// Package colorkey holds the pure parts of keyclip: the target colour value,
// the RGBA image snapshot, its fingerprint, and the colour-key transform.
// Nothing in this package performs I/O.
package colorkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a colour component is outside [0,255] or
// a colour string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is an immutable RGB triple. Equality is exact.
type Color struct {
	r, g, b uint8
}

// White is the default target colour.
var White = Color{255, 255, 255}

// RGB builds a Color from components that are already known to be in range.
func RGB(r, g, b uint8) Color { return Color{r, g, b} }

// NewColor validates untrusted components (config files, RPC input).
func NewColor(r, g, b int) (Color, error) {
	for _, v := range [...]int{r, g, b} {
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("%w: component %d out of range [0,255]", ErrInvalidColor, v)
		}
	}
	return Color{uint8(r), uint8(g), uint8(b)}, nil
}

// ParseColor accepts "#rrggbb", "#rgb", "rrggbb", "rgb" or a decimal
// "r,g,b" triple.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if strings.Contains(s, ",") {
		return parseTriple(s)
	}

	h := strings.TrimPrefix(s, "#")
	if (len(h) != 3 && len(h) != 6) || !isHex(h) {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex("#" + strings.ToLower(h))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return Color{r, g, b}, nil
}

func parseTriple(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("%w: %q: want r,g,b", ErrInvalidColor, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		v[i] = n
	}
	return NewColor(v[0], v[1], v[2])
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func (c Color) R() uint8 { return c.r }
func (c Color) G() uint8 { return c.g }
func (c Color) B() uint8 { return c.b }

// Matches reports whether the given channels equal c exactly.
func (c Color) Matches(r, g, b uint8) bool {
	return c.r == r && c.g == g && c.b == b
}

// Hex renders the colour as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.r, c.g, c.b)
}
