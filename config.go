package backdrop

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the mount configuration. Keys absent from a TOML file keep
// their DefaultConfig values.
type Config struct {
	BackgroundColor Color   `toml:"background_color"`
	CameraFOV       float32 `toml:"camera_fov"`
	// ObjectCount is the number of generated entries: stars for the cosmic
	// preset, ignored by the letters preset.
	ObjectCount     int             `toml:"object_count"`
	Antialias       bool            `toml:"antialias"`
	Transparent     bool            `toml:"transparent"`
	PixelDensityCap float64         `toml:"pixel_density_cap"`
	PowerPreference PowerPreference `toml:"power_preference"`

	ParallaxStrength float32 `toml:"parallax_strength"`
	Smoothing        float32 `toml:"smoothing"`

	// Text is the string rendered by the letters preset.
	Text string `toml:"text"`
	// Seed seeds the random source when the host does not supply one.
	// Zero means time based.
	Seed  uint64 `toml:"seed"`
	Debug bool   `toml:"debug"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		BackgroundColor:  Hex(0x05060f),
		CameraFOV:        75,
		ObjectCount:      5000,
		Antialias:        true,
		PixelDensityCap:  2,
		PowerPreference:  PowerHighPerformance,
		ParallaxStrength: 1,
		Smoothing:        DefaultSmoothing,
		Text:             "PORTFOLIO",
	}
}

// ParseConfig decodes TOML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first out-of-range field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.CameraFOV <= 0 || c.CameraFOV >= 180:
		return fmt.Errorf("%w: camera_fov %v not in (0, 180)", ErrInvalidConfig, c.CameraFOV)
	case c.ObjectCount < 0:
		return fmt.Errorf("%w: object_count %d is negative", ErrInvalidConfig, c.ObjectCount)
	case c.PixelDensityCap < 0:
		return fmt.Errorf("%w: pixel_density_cap %v is negative", ErrInvalidConfig, c.PixelDensityCap)
	case c.Smoothing < 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing %v not in [0, 1]", ErrInvalidConfig, c.Smoothing)
	}
	switch c.PowerPreference {
	case "", PowerDefault, PowerHighPerformance, PowerLowPower:
	default:
		return fmt.Errorf("%w: power_preference %q", ErrInvalidConfig, c.PowerPreference)
	}
	return nil
}

// SurfaceOptions returns the surface options derived from the config.
func (c Config) SurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		Antialias:       c.Antialias,
		Transparent:     c.Transparent,
		PixelDensityCap: c.PixelDensityCap,
		PowerPreference: c.PowerPreference,
		Background:      c.BackgroundColor,
	}
}
