package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"go.klb.dev/keyclip/internal/colorkey"
)

// Config keys. The target_color table is the historical layout; "color"
// (hex or r,g,b string) wins when both are present.
const (
	KeyEnabled = "enabled"
	KeyColor   = "color"
	keyTable   = "target_color"
)

var channelKeys = [3]string{keyTable + ".r", keyTable + ".g", keyTable + ".b"}

// FromViper builds Settings from v, validating the colour. Missing keys fall
// back to Default.
func FromViper(v *viper.Viper) (Settings, error) {
	s := Default()
	if v.IsSet(KeyEnabled) {
		enabled, err := cast.ToBoolE(v.Get(KeyEnabled))
		if err != nil {
			return Settings{}, fmt.Errorf("config %s: %w", KeyEnabled, err)
		}
		s.Enabled = enabled
	}
	c, err := colorFromViper(v)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	s.Color = c
	return s, nil
}

func colorFromViper(v *viper.Viper) (colorkey.Color, error) {
	if str := v.GetString(KeyColor); str != "" {
		return colorkey.ParseColor(str)
	}
	if !v.IsSet(keyTable) {
		return colorkey.White, nil
	}
	var rgb [3]int
	for i, k := range channelKeys {
		if !v.IsSet(k) {
			return colorkey.Color{}, fmt.Errorf("%w: %s needs r, g and b", colorkey.ErrInvalidColor, keyTable)
		}
		n, err := cast.ToIntE(v.Get(k))
		if err != nil {
			return colorkey.Color{}, fmt.Errorf("%w: %s: %v", colorkey.ErrInvalidColor, k, err)
		}
		rgb[i] = n
	}
	return colorkey.NewColor(rgb[0], rgb[1], rgb[2])
}

// Watch reloads st whenever v's config file changes. Reloads that fail
// validation are logged and dropped; st keeps its last valid value.
func Watch(v *viper.Viper, st *Store) {
	v.OnConfigChange(func(e fsnotify.Event) { reload(v, st, e.Name) })
	v.WatchConfig()
}

func reload(v *viper.Viper, st *Store, name string) {
	next, err := FromViper(v)
	if err != nil {
		slog.Warn("config reload rejected, keeping current settings",
			"file", name,
			"current", st.Current().String(),
			"err", err,
		)
		return
	}
	if next == st.Current() {
		return
	}
	st.Replace(next)
	slog.Info("config reloaded", "file", name, "settings", next.String())
}

// Save writes s into the TOML file at path, keeping any other keys already
// in the file. Parent directories are created as needed.
func Save(path string, s Settings) error {
	w := viper.New()
	w.SetConfigFile(path)
	w.SetConfigType("toml")
	if err := w.ReadInConfig(); err != nil && !notFound(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	w.Set(KeyEnabled, s.Enabled)
	w.Set(channelKeys[0], int(s.Color.R()))
	w.Set(channelKeys[1], int(s.Color.G()))
	w.Set(channelKeys[2], int(s.Color.B()))
	if w.IsSet(KeyColor) {
		w.Set(KeyColor, s.Color.Hex())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := w.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func notFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &nf)
}

// EnsureFile writes a default config to path if nothing exists there yet.
// It reports whether a file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := Save(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}
