package backdrop

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
object_count = 1200
background_color = "#ff0000"
power_preference = "low-power"
`))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.ObjectCount != 1200 {
		t.Errorf("ObjectCount = %d, want 1200", cfg.ObjectCount)
	}
	if cfg.BackgroundColor != Hex(0xff0000) {
		t.Errorf("BackgroundColor = %v, want #ff0000", cfg.BackgroundColor)
	}
	if cfg.PowerPreference != PowerLowPower {
		t.Errorf("PowerPreference = %q", cfg.PowerPreference)
	}
	if cfg.CameraFOV != def.CameraFOV || cfg.Text != def.Text || cfg.Smoothing != def.Smoothing {
		t.Errorf("absent keys lost their defaults: %+v", cfg)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("empty document = %+v, want defaults", cfg)
	}
}

func TestParseConfigUnknownKey(t *testing.T) {
	if _, err := ParseConfig([]byte("star_count = 10\n")); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestParseConfigBadColor(t *testing.T) {
	if _, err := ParseConfig([]byte(`background_color = "#zzzzzz"`)); err == nil {
		t.Error("invalid color accepted")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fov zero", func(c *Config) { c.CameraFOV = 0 }},
		{"fov 180", func(c *Config) { c.CameraFOV = 180 }},
		{"negative count", func(c *Config) { c.ObjectCount = -1 }},
		{"negative density cap", func(c *Config) { c.PixelDensityCap = -0.5 }},
		{"smoothing above one", func(c *Config) { c.Smoothing = 1.5 }},
		{"negative smoothing", func(c *Config) { c.Smoothing = -0.1 }},
		{"power preference", func(c *Config) { c.PowerPreference = "turbo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	zeroPower := DefaultConfig()
	zeroPower.PowerPreference = ""
	if err := zeroPower.Validate(); err != nil {
		t.Errorf("empty power preference rejected: %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Transparent = true
	cfg.Text = "HELLO"
	cfg.BackgroundColor = Color{R: 1, G: 0, B: 0, A: 0.5}
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `background_color = '#ff000080'`) &&
		!strings.Contains(string(data), `background_color = "#ff000080"`) {
		t.Errorf("color not written as hex:\n%s", data)
	}
	back, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, data)
	}
	if back.Seed != 42 || !back.Transparent || back.Text != "HELLO" {
		t.Errorf("round trip = %+v", back)
	}
	if back.BackgroundColor.String() != "#ff000080" {
		t.Errorf("color round trip = %v", back.BackgroundColor)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backdrop.toml")
	if err := os.WriteFile(path, []byte("camera_fov = 60\ntext = \"HI\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CameraFOV != 60 || cfg.Text != "HI" {
		t.Errorf("loaded %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("camera_fov = 500\n"), 0o644)
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig(bad) = %v, want ErrInvalidConfig", err)
	}
}

func TestConfigSurfaceOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.SurfaceOptions()
	if opts.PixelDensityCap != 2 || !opts.Antialias || opts.Background != cfg.BackgroundColor {
		t.Errorf("SurfaceOptions = %+v", opts)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#fff", ColorWhite, true},
		{"00d4ff", Hex(0x00d4ff), true},
		{" #8b5cf6 ", Hex(0x8b5cf6), true},
		{"#00000000", Color{}, true},
		{"#12345", Color{}, false},
		{"#gggggg", Color{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) error = %v, want ok %v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
