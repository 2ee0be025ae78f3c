package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":  FormatJSON,
		"JSON":  FormatJSON,
		"text":  FormatText,
		"tint":  FormatText,
		"human": FormatText,
		"":      FormatAuto,
		"xml":   FormatAuto,
	}
	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		interactive bool
		level       string
		want        slog.Level
	}{
		{false, "", slog.LevelInfo},
		{true, "", slog.LevelDebug},
		{true, "warn", slog.LevelWarn},
		{false, "error", slog.LevelError},
		{false, "bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := Resolve(tt.interactive, tt.level); got != tt.want {
			t.Errorf("Resolve(%v, %q) = %s, want %s", tt.interactive, tt.level, got, tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, FormatAuto, slog.LevelInfo))
	log.Debug("hidden")
	log.Info("clipboard image converted", "keyed_pixels", 3)

	// A bytes.Buffer is not a terminal, so auto picks JSON.
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "clipboard image converted" || rec["keyed_pixels"] != float64(3) {
		t.Errorf("unexpected record: %v", rec)
	}

	buf.Reset()
	slog.New(NewHandler(&buf, FormatText, slog.LevelInfo)).Info("hello")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("text handler output = %q", buf.String())
	}
}
