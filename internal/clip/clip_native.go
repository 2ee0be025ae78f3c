//go:build darwin || windows || linux

package clip

import (
	"golang.design/x/clipboard"

	"go.klb.dev/keyclip/internal/colorkey"
)

func readImage() (*colorkey.Snapshot, error) {
	return decodeImage(clipboard.Read(clipboard.FmtImage))
}

func writeImage(s colorkey.Snapshot) error {
	data, err := encodePNG(s)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
