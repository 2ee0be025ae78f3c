package clip

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"go.klb.dev/keyclip/internal/colorkey"
)

// decodeImage turns clipboard image bytes into a snapshot. nil data means
// "no image on the clipboard".
func decodeImage(data []byte) (*colorkey.Snapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode clipboard image: %v", colorkey.ErrUnsupportedFormat, err)
	}
	s, err := colorkey.FromImage(img)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// encodePNG renders s as PNG, keeping RGB of fully transparent pixels.
func encodePNG(s colorkey.Snapshot) ([]byte, error) {
	img, err := s.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
