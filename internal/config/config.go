package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/pad/internal/config/loader"
	"github.com/dshills/pad/internal/renderer/core"
)

// Capacity bounds for the line buffer.
const (
	MinCapacity = 2
	MaxCapacity = 65536
)

// Word-delete modifier names.
const (
	ModifierCtrl = "ctrl"
	ModifierAlt  = "alt"
	ModifierAny  = "any"
)

// DefaultEnvPrefix is the prefix for environment overrides.
const DefaultEnvPrefix = "PAD_"

// Config holds all settings.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	Layout LayoutConfig `toml:"layout"`
	Theme  ThemeConfig  `toml:"theme"`
	Log    LogConfig    `toml:"log"`
	Watch  WatchConfig  `toml:"watch"`

	// Source is the file the configuration was read from, if any.
	Source string `toml:"-"`
}

// EditorConfig configures the line buffer and key handling.
type EditorConfig struct {
	// Capacity is the buffer size in bytes, one byte reserved.
	Capacity int `toml:"capacity"`
	// WordModifier selects which modifier turns backspace into word delete.
	WordModifier string `toml:"word_modifier"`
}

// LayoutConfig positions the text, in cells.
type LayoutConfig struct {
	Left    int `toml:"left"`
	Top     int `toml:"top"`
	Advance int `toml:"advance"`
}

// ThemeConfig holds colors as hex strings.
type ThemeConfig struct {
	Background string `toml:"background"`
	Caret      string `toml:"caret"`
	Text       string `toml:"text"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives log output. Empty discards it.
	File string `toml:"file"`
}

// WatchConfig configures live reload.
type WatchConfig struct {
	Enabled bool `toml:"enabled"`
}

// Palette is a ThemeConfig resolved to colors.
type Palette struct {
	Background core.Color
	Caret      core.Color
	Text       core.Color
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			Capacity:     256,
			WordModifier: ModifierCtrl,
		},
		Layout: LayoutConfig{
			Left:    2,
			Top:     1,
			Advance: 1,
		},
		Theme: ThemeConfig{
			Background: "#000000",
			Caret:      "#808080",
			Text:       "#FFFFFF",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path names a TOML or YAML file. Empty means no file.
	Path string

	// EnvPrefix overrides DefaultEnvPrefix. "-" disables environment overrides.
	EnvPrefix string

	// FS is used to read Path. Defaults to the OS file system.
	FS loader.FileSystem

	// Environ overrides os.Environ.
	Environ func() []string
}

// Load merges defaults, the optional file and the environment, then decodes
// and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	var source string
	if opts.Path != "" {
		data, err := loadFile(fsys, opts.Path)
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
		if abs, err := filepath.Abs(opts.Path); err == nil {
			source = abs
		} else {
			source = opts.Path
		}
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	if prefix != "-" {
		template, err := toMap(Default())
		if err != nil {
			return nil, err
		}
		env := loader.NewEnvLoader(prefix)
		env.SetEnviron(opts.Environ)
		env.SetTemplate(template)
		data, err := env.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile reads an explicitly named config file.
func loadFile(fsys loader.FileSystem, path string) (map[string]any, error) {
	if _, err := fsys.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("checking config file %s: %w", path, err)
	}

	l, err := loader.ForPath(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := l.Load()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return data, nil
}

// toMap converts a Config into the generic map form used for merging.
func toMap(cfg *Config) (map[string]any, error) {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return m, nil
}

// decode converts a merged map into a typed Config.
func decode(m map[string]any) (*Config, error) {
	raw, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg := &Config{}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if c.Editor.Capacity < MinCapacity || c.Editor.Capacity > MaxCapacity {
		fail("editor.capacity", fmt.Sprintf("must be between %d and %d", MinCapacity, MaxCapacity), c.Editor.Capacity)
	}
	switch c.Editor.WordModifier {
	case ModifierCtrl, ModifierAlt, ModifierAny:
	default:
		fail("editor.word_modifier", "must be one of ctrl, alt, any", c.Editor.WordModifier)
	}

	if c.Layout.Left < 0 {
		fail("layout.left", "must not be negative", c.Layout.Left)
	}
	if c.Layout.Top < 0 {
		fail("layout.top", "must not be negative", c.Layout.Top)
	}
	if c.Layout.Advance < 1 {
		fail("layout.advance", "must be at least 1", c.Layout.Advance)
	}

	for _, s := range []struct{ path, value string }{
		{"theme.background", c.Theme.Background},
		{"theme.caret", c.Theme.Caret},
		{"theme.text", c.Theme.Text},
	} {
		if _, err := core.ColorFromHex(s.value); err != nil {
			fail(s.path, "invalid color", s.value)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		fail("log.level", "must be one of debug, info, warn, error", c.Log.Level)
	}

	return errors.Join(errs...)
}

// Palette resolves the theme colors.
func (t ThemeConfig) Palette() (Palette, error) {
	var p Palette
	var err error
	if p.Background, err = core.ColorFromHex(t.Background); err != nil {
		return Palette{}, fmt.Errorf("theme.background: %w", err)
	}
	if p.Caret, err = core.ColorFromHex(t.Caret); err != nil {
		return Palette{}, fmt.Errorf("theme.caret: %w", err)
	}
	if p.Text, err = core.ColorFromHex(t.Text); err != nil {
		return Palette{}, fmt.Errorf("theme.text: %w", err)
	}
	return p, nil
}
