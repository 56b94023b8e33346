// Package config loads the editor's TOML configuration.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/phanxgames/pallet"
)

type Config struct {
	Scene   SceneConfig   `toml:"scene"`
	Tween   TweenConfig   `toml:"tween"`
	View    ViewConfig    `toml:"view"`
	Logging LoggingConfig `toml:"logging"`
}

type SceneConfig struct {
	HistoryCapacity int  `toml:"history_capacity"`
	Debug           bool `toml:"debug"` // tree depth and child count warnings

	// Defaults is keyed by category name: "user", "system" or "decorator".
	// Unset flags keep the built-in default.
	Defaults map[string]FlagsConfig `toml:"defaults"`
}

type FlagsConfig struct {
	Searchable  *bool `toml:"searchable"`
	Raycastable *bool `toml:"raycastable"`
	Browsable   *bool `toml:"browsable"`
}

type TweenConfig struct {
	DefaultEasing string        `toml:"default_easing"`
	FixedStep     time.Duration `toml:"fixed_step"` // 0 = wall clock
}

type ViewConfig struct {
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	TPS     int    `toml:"tps"`
	ShowFPS bool   `toml:"show_fps"`

	ScreenshotDir string `toml:"screenshot_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse: unknown key %s", undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			HistoryCapacity: pallet.DefaultHistoryCapacity,
		},
		Tween: TweenConfig{
			DefaultEasing: pallet.DefaultEasing,
		},
		View: ViewConfig{
			Title:   "pallet",
			Width:   1280,
			Height:  720,
			TPS:     60,
			ShowFPS: true,

			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Scene.HistoryCapacity <= 0 {
		return fmt.Errorf("%w: scene.history_capacity must be positive, got %d",
			pallet.ErrInvalidConfiguration, c.Scene.HistoryCapacity)
	}
	for name := range c.Scene.Defaults {
		if !validCategory(name) {
			return fmt.Errorf("%w: scene.defaults: unknown category %q", pallet.ErrInvalidConfiguration, name)
		}
	}
	if e := strings.ToLower(c.Tween.DefaultEasing); e != "" && !slices.Contains(pallet.Easings(), e) {
		return fmt.Errorf("%w: tween.default_easing %q", pallet.ErrUnknownEasing, c.Tween.DefaultEasing)
	}
	if c.Tween.FixedStep < 0 {
		return fmt.Errorf("%w: tween.fixed_step must not be negative", pallet.ErrInvalidConfiguration)
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return fmt.Errorf("%w: view size %dx%d", pallet.ErrInvalidConfiguration, c.View.Width, c.View.Height)
	}
	if c.View.TPS <= 0 {
		return fmt.Errorf("%w: view.tps must be positive", pallet.ErrInvalidConfiguration)
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", pallet.ErrInvalidConfiguration, err)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format %q", pallet.ErrInvalidConfiguration, c.Logging.Format)
	}
	return nil
}

// SceneConfig converts the [scene] section for pallet.NewScene.
func (c *Config) SceneConfig(n *pallet.ChangeNotifier, log *zap.Logger) pallet.SceneConfig {
	sc := pallet.SceneConfig{
		HistoryCapacity: c.Scene.HistoryCapacity,
		Notifier:        n,
		Logger:          log,
		Debug:           c.Scene.Debug,
	}
	if len(c.Scene.Defaults) > 0 {
		sc.Defaults = make(map[pallet.Category]pallet.Flags, len(c.Scene.Defaults))
		for name, fc := range c.Scene.Defaults {
			cat := pallet.ParseCategory(name)
			sc.Defaults[cat] = fc.apply(pallet.DefaultFlags(cat))
		}
	}
	return sc
}

func (f FlagsConfig) apply(def pallet.Flags) pallet.Flags {
	if f.Searchable != nil {
		def.Searchable = *f.Searchable
	}
	if f.Raycastable != nil {
		def.Raycastable = *f.Raycastable
	}
	if f.Browsable != nil {
		def.Browsable = *f.Browsable
	}
	return def
}

func validCategory(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "user", "system", "decorator":
		return true
	}
	return false
}
