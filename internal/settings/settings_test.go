package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"

	"go.klb.dev/keyclip/internal/colorkey"
)

func TestStore(t *testing.T) {
	st := NewStore(Default())
	if !st.Enabled() || st.Color() != colorkey.White {
		t.Fatalf("unexpected initial settings: %s", st.Current())
	}

	var (
		mu   sync.Mutex
		seen []Settings
	)
	st.OnChange(func(s Settings) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	st.SetEnabled(false)
	st.SetColor(colorkey.RGB(0, 0, 0))
	st.SetColor(colorkey.RGB(0, 0, 0)) // no-op, not reported

	want := Settings{Enabled: false, Color: colorkey.RGB(0, 0, 0)}
	if got := st.Current(); got != want {
		t.Errorf("Current() = %s, want %s", got, want)
	}
	if len(seen) != 2 {
		t.Errorf("OnChange called %d times, want 2", len(seen))
	}
}

func TestStore_ConcurrentWriters(t *testing.T) {
	st := NewStore(Default())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			st.SetColor(colorkey.RGB(uint8(i), 0, 0))
		}(i)
		go func(i int) {
			defer wg.Done()
			st.SetEnabled(i%2 == 0)
			_ = st.Color()
		}(i)
	}
	wg.Wait()

	// Both writers update distinct fields; neither update may be lost to the other.
	st.SetColor(colorkey.RGB(9, 9, 9))
	st.SetEnabled(true)
	if got := st.Current(); got.Color != colorkey.RGB(9, 9, 9) || !got.Enabled {
		t.Errorf("Current() = %s", got)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keyclip.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func loadViper(t *testing.T, path string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}
	return v
}

func TestFromViper(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Settings
		wantErr bool
	}{
		{
			name:    "empty file uses defaults",
			content: "",
			want:    Default(),
		},
		{
			name:    "target_color table",
			content: "[target_color]\nr = 231\ng = 254\nb = 182\n",
			want:    Settings{Enabled: true, Color: colorkey.RGB(231, 254, 182)},
		},
		{
			name:    "hex color wins over table",
			content: "enabled = false\ncolor = \"#000000\"\n[target_color]\nr = 1\ng = 2\nb = 3\n",
			want:    Settings{Enabled: false, Color: colorkey.RGB(0, 0, 0)},
		},
		{
			name:    "component out of range",
			content: "[target_color]\nr = 300\ng = 0\nb = 0\n",
			wantErr: true,
		},
		{
			name:    "missing component",
			content: "[target_color]\nr = 1\ng = 2\n",
			wantErr: true,
		},
		{
			name:    "bad color string",
			content: "color = \"chartreuse-ish\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := loadViper(t, writeConfig(t, tt.content))
			got, err := FromViper(v)
			if tt.wantErr {
				if !errors.Is(err, colorkey.ErrInvalidColor) {
					t.Fatalf("err = %v, want ErrInvalidColor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromViper failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("FromViper() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReload_RejectsInvalidColor(t *testing.T) {
	path := writeConfig(t, "[target_color]\nr = 10\ng = 20\nb = 30\n")
	v := loadViper(t, path)
	st := NewStore(Default())

	reload(v, st, path)
	if got := st.Color(); got != colorkey.RGB(10, 20, 30) {
		t.Fatalf("Color() = %s after valid reload", got)
	}

	if err := os.WriteFile(path, []byte("[target_color]\nr = 999\ng = 0\nb = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	reload(v, st, path)
	if got := st.Color(); got != colorkey.RGB(10, 20, 30) {
		t.Errorf("Color() = %s, want last valid rgb(10, 20, 30)", got)
	}
}

func TestSave_KeepsOtherKeys(t *testing.T) {
	path := writeConfig(t, "poll-interval = \"1s\"\nlog-level = \"debug\"\n")

	s := Settings{Enabled: false, Color: colorkey.RGB(1, 2, 3)}
	if err := Save(path, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	v := loadViper(t, path)
	got, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}
	if got != s {
		t.Errorf("round trip = %s, want %s", got, s)
	}
	if v.GetString("log-level") != "debug" || v.GetString("poll-interval") != "1s" {
		t.Errorf("other keys lost: %v", v.AllSettings())
	}
}

func TestSave_UpdatesColorString(t *testing.T) {
	path := writeConfig(t, "color = \"#ffffff\"\n")
	if err := Save(path, Settings{Enabled: true, Color: colorkey.RGB(0, 0, 0)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := FromViper(loadViper(t, path))
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}
	if got.Color != colorkey.RGB(0, 0, 0) {
		t.Errorf("Color = %s, want black", got.Color)
	}
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "keyclip.toml")

	created, err := EnsureFile(path)
	if err != nil || !created {
		t.Fatalf("EnsureFile = %v, %v; want true, nil", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "target_color") {
		t.Errorf("default config missing target_color table:\n%s", data)
	}

	if err := Save(path, Settings{Enabled: true, Color: colorkey.RGB(10, 20, 30)}); err != nil {
		t.Fatal(err)
	}
	created, err = EnsureFile(path)
	if err != nil || created {
		t.Fatalf("EnsureFile on existing file = %v, %v; want false, nil", created, err)
	}
	got, err := FromViper(loadViper(t, path))
	if err != nil {
		t.Fatal(err)
	}
	if got.Color != colorkey.RGB(10, 20, 30) {
		t.Errorf("existing config overwritten: %s", got)
	}
}
