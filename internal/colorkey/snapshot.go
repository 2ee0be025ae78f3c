package colorkey

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/bits"

	"github.com/disintegration/imaging"
)

var (
	// ErrEmptyImage is returned for snapshots with a zero dimension.
	ErrEmptyImage = errors.New("empty image")
	// ErrUnsupportedFormat is returned for snapshots whose format tag or
	// buffer length does not describe packed RGBA.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Format tags the pixel layout of a Snapshot.
type Format uint8

const (
	FormatUnknown Format = iota
	// FormatRGBA is 8 bits per channel, R,G,B,A order, straight alpha,
	// row-major, no row padding.
	FormatRGBA
)

func (f Format) String() string {
	switch f {
	case FormatRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Snapshot is a point-in-time copy of a clipboard image.
type Snapshot struct {
	Width  uint32
	Height uint32
	Format Format
	Pix    []byte
}

// NewSnapshot wraps pix as an RGBA snapshot without copying it.
func NewSnapshot(width, height uint32, pix []byte) Snapshot {
	return Snapshot{Width: width, Height: height, Format: FormatRGBA, Pix: pix}
}

// Validate checks the snapshot invariants.
func (s Snapshot) Validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, s.Width, s.Height)
	}
	if s.Format != FormatRGBA {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Format)
	}
	hi, px := bits.Mul64(uint64(s.Width), uint64(s.Height))
	if hi != 0 || px > math.MaxUint64/4 {
		return fmt.Errorf("%w: %dx%d is too large", ErrUnsupportedFormat, s.Width, s.Height)
	}
	if want := px * 4; uint64(len(s.Pix)) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, have %d",
			ErrUnsupportedFormat, s.Width, s.Height, want, len(s.Pix))
	}
	return nil
}

// FromImage normalises any decoded image to a packed RGBA snapshot with
// straight alpha.
func FromImage(img image.Image) (Snapshot, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Snapshot{}, fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}
	n := imaging.Clone(img)
	w, h := n.Rect.Dx(), n.Rect.Dy()
	row := w * 4
	pix := make([]byte, row*h)
	for y := 0; y < h; y++ {
		copy(pix[y*row:(y+1)*row], n.Pix[y*n.Stride:y*n.Stride+row])
	}
	return NewSnapshot(uint32(w), uint32(h), pix), nil
}

// Image exposes the snapshot as an *image.NRGBA sharing the pixel buffer.
func (s Snapshot) Image() (*image.NRGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    s.Pix,
		Stride: int(s.Width) * 4,
		Rect:   image.Rect(0, 0, int(s.Width), int(s.Height)),
	}, nil
}
