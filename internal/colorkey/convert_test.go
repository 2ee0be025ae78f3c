package colorkey

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func pixels(px ...[4]byte) []byte {
	out := make([]byte, 0, len(px)*4)
	for _, p := range px {
		out = append(out, p[:]...)
	}
	return out
}

func TestConvert_Scenario(t *testing.T) {
	src := NewSnapshot(2, 1, pixels(
		[4]byte{255, 255, 255, 255},
		[4]byte{10, 20, 30, 255},
	))

	out, keyed, err := Convert(src, White)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	want := pixels(
		[4]byte{255, 255, 255, 0},
		[4]byte{10, 20, 30, 255},
	)
	if !bytes.Equal(out.Pix, want) {
		t.Errorf("Pix = %v, want %v", out.Pix, want)
	}
	if keyed != 1 {
		t.Errorf("keyed = %d, want 1", keyed)
	}
	if out.Width != 2 || out.Height != 1 {
		t.Errorf("dimensions = %dx%d, want 2x1", out.Width, out.Height)
	}
}

func TestConvert_DoesNotMutateInput(t *testing.T) {
	in := pixels([4]byte{0, 0, 0, 255})
	src := NewSnapshot(1, 1, in)
	if _, _, err := Convert(src, RGB(0, 0, 0)); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if in[3] != 255 {
		t.Errorf("input alpha changed to %d", in[3])
	}
}

func TestConvert_Cases(t *testing.T) {
	tests := []struct {
		name   string
		target Color
		in     []byte
		want   []byte
	}{
		{
			name:   "target black",
			target: RGB(0, 0, 0),
			in:     pixels([4]byte{0, 0, 0, 255}, [4]byte{255, 255, 255, 255}),
			want:   pixels([4]byte{0, 0, 0, 0}, [4]byte{255, 255, 255, 255}),
		},
		{
			name:   "partial rgb match is kept",
			target: White,
			in:     pixels([4]byte{255, 255, 0, 255}),
			want:   pixels([4]byte{255, 255, 0, 255}),
		},
		{
			name:   "already transparent stays transparent",
			target: White,
			in:     pixels([4]byte{255, 255, 255, 0}),
			want:   pixels([4]byte{255, 255, 255, 0}),
		},
		{
			name:   "non matching keeps its alpha",
			target: White,
			in:     pixels([4]byte{1, 2, 3, 77}),
			want:   pixels([4]byte{1, 2, 3, 77}),
		},
		{
			name:   "semi transparent match is keyed",
			target: RGB(231, 254, 182),
			in:     pixels([4]byte{231, 254, 182, 128}, [4]byte{230, 254, 182, 255}),
			want:   pixels([4]byte{231, 254, 182, 0}, [4]byte{230, 254, 182, 255}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSnapshot(uint32(len(tt.in)/4), 1, tt.in)
			out, _, err := Convert(src, tt.target)
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if !bytes.Equal(out.Pix, tt.want) {
				t.Errorf("Pix = %v, want %v", out.Pix, tt.want)
			}
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  Snapshot
		want error
	}{
		{"zero width", NewSnapshot(0, 1, nil), ErrEmptyImage},
		{"zero height", NewSnapshot(3, 0, nil), ErrEmptyImage},
		{"short buffer", NewSnapshot(2, 1, []byte{1, 2, 3, 4}), ErrUnsupportedFormat},
		{"long buffer", NewSnapshot(1, 1, make([]byte, 8)), ErrUnsupportedFormat},
		{"unknown format", Snapshot{Width: 1, Height: 1, Pix: make([]byte, 4)}, ErrUnsupportedFormat},
		{"dimensions overflow byte count", NewSnapshot(1<<31, 1<<31, nil), ErrUnsupportedFormat},
		{"max dimensions", NewSnapshot(math.MaxUint32, math.MaxUint32, make([]byte, 4)), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, keyed, err := Convert(tt.src, White)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if out.Pix != nil || keyed != 0 {
				t.Errorf("expected no output on error, got %d bytes, keyed %d", len(out.Pix), keyed)
			}
		})
	}
}

// randomSnapshot builds an image whose pixels are drawn from a small palette
// so that matches against the target are common.
func randomSnapshot(rng *rand.Rand, w, h int) Snapshot {
	palette := [][4]byte{
		{255, 255, 255, 255},
		{255, 255, 255, 10},
		{0, 0, 0, 255},
		{255, 254, 255, 255},
		{12, 34, 56, 200},
	}
	pix := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		p := palette[rng.Intn(len(palette))]
		pix = append(pix, p[:]...)
	}
	return NewSnapshot(uint32(w), uint32(h), pix)
}

func TestConvert_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	targets := []Color{White, RGB(0, 0, 0), RGB(12, 34, 56)}

	for n := 0; n < 50; n++ {
		src := randomSnapshot(rng, 1+rng.Intn(16), 1+rng.Intn(16))
		target := targets[n%len(targets)]

		once, _, err := Convert(src, target)
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if once.Width != src.Width || once.Height != src.Height {
			t.Fatalf("dimensions changed: %dx%d -> %dx%d", src.Width, src.Height, once.Width, once.Height)
		}

		for i := 0; i < len(src.Pix); i += 4 {
			in, out := src.Pix[i:i+4], once.Pix[i:i+4]
			if !bytes.Equal(in[:3], out[:3]) {
				t.Fatalf("pixel %d rgb changed: %v -> %v", i/4, in, out)
			}
			if target.Matches(in[0], in[1], in[2]) {
				if out[3] != 0 {
					t.Fatalf("pixel %d matches %s but alpha = %d", i/4, target, out[3])
				}
			} else if out[3] != in[3] {
				t.Fatalf("pixel %d does not match but alpha %d -> %d", i/4, in[3], out[3])
			}
		}

		twice, _, err := Convert(once, target)
		if err != nil {
			t.Fatalf("second Convert failed: %v", err)
		}
		if !bytes.Equal(once.Pix, twice.Pix) {
			t.Fatalf("second pass changed output")
		}
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})

	s, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := s.Pix[0:4]; !bytes.Equal(got, []byte{255, 0, 0, 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
	if got := s.Pix[12:16]; !bytes.Equal(got, []byte{0, 0, 255, 255}) {
		t.Errorf("pixel (1,1) = %v", got)
	}

	back, err := s.Image()
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if back.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("bounds = %v", back.Bounds())
	}
}

func TestFromImage_Empty(t *testing.T) {
	_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 5)))
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("err = %v, want ErrEmptyImage", err)
	}
}

func TestImage_RejectsOversizedSnapshot(t *testing.T) {
	img, err := NewSnapshot(1<<31, 1<<31, nil).Image()
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Image() err = %v, want ErrUnsupportedFormat", err)
	}
	if img != nil {
		t.Errorf("Image() returned %v for an invalid snapshot", img.Rect)
	}
}
