// Package config loads SharedBoard settings from an optional TOML file
// layered over built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"SharedBoard/internal/state"
	"SharedBoard/internal/stroke"
)

type Config struct {
	Relay   RelayConfig    `toml:"relay"`
	Client  ClientConfig   `toml:"client"`
	Canvas  CanvasConfig   `toml:"canvas"`
	Palette []PaletteColor `toml:"palette"`
	Log     LogConfig      `toml:"log"`
}

type RelayConfig struct {
	Listen    string `toml:"listen"`
	WebSocket string `toml:"websocket"` // empty disables the WebSocket listener
	Advertise bool   `toml:"advertise"`
	QueueSize int    `toml:"queue_size"`
}

type ClientConfig struct {
	Server          string   `toml:"server"`
	Discover        bool     `toml:"discover"`
	DiscoverTimeout Duration `toml:"discover_timeout"`
	DialTimeout     Duration `toml:"dial_timeout"`
}

type CanvasConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
}

type PaletteColor struct {
	Name string `toml:"name"`
	Hex  string `toml:"hex"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration decodes TOML strings such as "1500ms" or "3s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() Config {
	return Config{
		Relay: RelayConfig{
			Listen:    ":8080",
			WebSocket: ":8081",
			Advertise: true,
			QueueSize: 1024,
		},
		Client: ClientConfig{
			DiscoverTimeout: Duration{3 * time.Second},
			DialTimeout:     Duration{5 * time.Second},
		},
		Canvas: CanvasConfig{
			Width:      800,
			Height:     600,
			Background: "#eeeeee",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Relay.QueueSize < 0 {
		return fmt.Errorf("config: relay queue_size %d is negative", c.Relay.QueueSize)
	}
	if c.Client.DialTimeout.Duration <= 0 {
		return fmt.Errorf("config: client dial_timeout %v must be positive", c.Client.DialTimeout.Duration)
	}
	if c.Client.DiscoverTimeout.Duration <= 0 {
		return fmt.Errorf("config: client discover_timeout %v must be positive", c.Client.DiscoverTimeout.Duration)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas size %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return fmt.Errorf("config: canvas background: %w", err)
	}
	if _, err := c.PaletteColors(); err != nil {
		return fmt.Errorf("config: palette: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log format %q", c.Log.Format)
	}
	return nil
}

func (c Config) BackgroundColor() (stroke.Color, error) {
	return stroke.ParseHex(c.Canvas.Background)
}

// PaletteColors returns the configured palette, or the default one when
// none is configured.
func (c Config) PaletteColors() ([]state.NamedColor, error) {
	if len(c.Palette) == 0 {
		return state.DefaultPalette, nil
	}
	out := make([]state.NamedColor, 0, len(c.Palette))
	for _, p := range c.Palette {
		if p.Name == "" {
			return nil, fmt.Errorf("entry %q has no name", p.Hex)
		}
		col, err := stroke.ParseHex(p.Hex)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		out = append(out, state.NamedColor{Name: p.Name, Color: col})
	}
	return out, nil
}
