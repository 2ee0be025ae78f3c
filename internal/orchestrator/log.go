package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"go.klb.dev/keyclip/internal/colorkey"
)

// logConverted logs a conversion at INFO (size, target, keyed pixels) and
// DEBUG (fingerprints and buffer size).
func logConverted(log *slog.Logger, in colorkey.Snapshot, target colorkey.Color, keyed int, inFP, outFP colorkey.Fingerprint) {
	log.Info("clipboard image converted",
		"size", sizeOf(in),
		"target", target.String(),
		"keyed_pixels", keyed,
	)

	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	log.Debug("clipboard image written back",
		"input", inFP,
		"output", outFP,
		"size_bytes", len(in.Pix),
	)
}

func sizeOf(s colorkey.Snapshot) string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
