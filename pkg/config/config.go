// Package config loads editor settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/voxie/pkg/upload"
)

// DefaultPath is where the application looks for its settings.
const DefaultPath = "voxie.toml"

// Config holds the application settings.
type Config struct {
	Window WindowConfig `toml:"window"`
	Editor EditorConfig `toml:"editor"`
	Render RenderConfig `toml:"render"`
}

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// EditorConfig controls painting and script evaluation.
type EditorConfig struct {
	BrushRadius float32  `toml:"brush_radius"`
	EvalTimeout Duration `toml:"eval_timeout"`
}

// RenderConfig describes the renderer's upload buffers.
type RenderConfig struct {
	UploadCapacity   int  `toml:"upload_capacity"` // bytes per buffer
	NormalizeNormals bool `toml:"normalize_normals"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Voxie",
			Width:  1280,
			Height: 800,
		},
		Editor: EditorConfig{
			BrushRadius: 2.5,
			EvalTimeout: Duration{5 * time.Second},
		},
		Render: RenderConfig{
			UploadCapacity:   upload.DefaultCapacity,
			NormalizeNormals: true,
		},
	}
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Editor.BrushRadius < 0 {
		return fmt.Errorf("config: brush_radius %v must not be negative", c.Editor.BrushRadius)
	}
	if c.Editor.EvalTimeout.Duration <= 0 {
		return fmt.Errorf("config: eval_timeout %s must be positive", c.Editor.EvalTimeout)
	}
	if c.Render.UploadCapacity <= 0 {
		return fmt.Errorf("config: upload_capacity %d must be positive", c.Render.UploadCapacity)
	}
	return nil
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
