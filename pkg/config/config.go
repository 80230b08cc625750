// Package config loads dailyart settings from TOML or YAML files.
//
// Every field is optional; zero values fall back to the pipeline defaults.
// CLI flags override whatever the file sets.
//
// Example config.toml:
//
//	width = 2048
//	height = 2048
//	output_dir = "~/Pictures/dailyart"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[[palettes]]
//	name = "Sunset"
//	bg_start = "#1a0a2e"
//	bg_end = "#ff6b35"
//	lines = ["#ffd23f", "#ee4266"]
//	grid = "#540d6e"
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/errors"
	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/pipeline"
	"github.com/matzehuels/dailyart/pkg/sink"
)

const (
	// appName names the config and cache directories.
	appName = "dailyart"

	// FileName is the config file looked up in the search path.
	FileName = "config.toml"

	// DefaultOutputDir is where images are written when nothing is set.
	DefaultOutputDir = "art"
)

// Config is the on-disk configuration.
type Config struct {
	Width     int             `toml:"width" yaml:"width"`
	Height    int             `toml:"height" yaml:"height"`
	OutputDir string          `toml:"output_dir" yaml:"output_dir"`
	Format    string          `toml:"format" yaml:"format"`
	Style     string          `toml:"style" yaml:"style"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Gallery   GalleryConfig   `toml:"gallery" yaml:"gallery"`
	Palettes  []PaletteConfig `toml:"palettes" yaml:"palettes"`

	// Path is the file this config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Disabled bool        `toml:"disabled" yaml:"disabled"`
	Dir      string      `toml:"dir" yaml:"dir"`
	Redis    RedisConfig `toml:"redis" yaml:"redis"`
}

// RedisConfig enables the Redis cache when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// GalleryConfig selects the gallery store. Without a Mongo URI the
// gallery is a JSON file in the output directory.
type GalleryConfig struct {
	Mongo MongoConfig `toml:"mongo" yaml:"mongo"`
}

// MongoConfig enables the MongoDB gallery when URI is set.
type MongoConfig struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// PaletteConfig is a custom palette with hex colors.
type PaletteConfig struct {
	Name    string   `toml:"name" yaml:"name"`
	BgStart string   `toml:"bg_start" yaml:"bg_start"`
	BgEnd   string   `toml:"bg_end" yaml:"bg_end"`
	Lines   []string `toml:"lines" yaml:"lines"`
	Grid    string   `toml:"grid" yaml:"grid"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Width:     pipeline.DefaultWidth,
		Height:    pipeline.DefaultHeight,
		OutputDir: DefaultOutputDir,
		Format:    pipeline.DefaultFormat,
		Style:     pipeline.DefaultStyle,
	}
}

// Load reads path, or the first file in the search path when path is
// empty. A missing file in the search path yields Default(); a missing
// explicit path is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes data over Default(). ext selects the decoder: ".yaml" and
// ".yml" use YAML, anything else TOML.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
	}
	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that has a value.
func (c *Config) Validate() error {
	if c.Width != 0 || c.Height != 0 {
		if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
			return err
		}
	}
	if c.OutputDir != "" {
		if err := errors.ValidateOutputDir(c.OutputDir); err != nil {
			return err
		}
	}
	if c.Format != "" {
		if err := sink.ValidateFormat(c.Format); err != nil {
			return err
		}
	}
	if c.Style != "" {
		if err := pipeline.ValidateStyle(strings.ToLower(c.Style)); err != nil {
			return err
		}
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// Registry returns the built-in palettes followed by the custom ones.
// With no custom palettes it is palette.Default().
func (c *Config) Registry() (*palette.Registry, error) {
	if len(c.Palettes) == 0 {
		return palette.Default(), nil
	}
	all := palette.Builtin()
	for _, pc := range c.Palettes {
		p, err := pc.Palette()
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	return palette.NewRegistry(all...)
}

// Palette converts the hex form into a validated palette.
func (pc PaletteConfig) Palette() (palette.Palette, error) {
	p := palette.Palette{Name: strings.TrimSpace(pc.Name)}
	var err error
	if p.BgStart, err = palette.ParseHex(pc.BgStart); err != nil {
		return palette.Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q bg_start", pc.Name)
	}
	if p.BgEnd, err = palette.ParseHex(pc.BgEnd); err != nil {
		return palette.Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q bg_end", pc.Name)
	}
	if p.Grid, err = palette.ParseHex(pc.Grid); err != nil {
		return palette.Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q grid", pc.Name)
	}
	p.Lines = make([]canvas.Color, 0, len(pc.Lines))
	for _, h := range pc.Lines {
		col, err := palette.ParseHex(h)
		if err != nil {
			return palette.Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q lines", pc.Name)
		}
		p.Lines = append(p.Lines, col)
	}
	if err := p.Validate(); err != nil {
		return palette.Palette{}, err
	}
	return p, nil
}

// =============================================================================
// Paths
// =============================================================================

// SearchPaths lists the config files tried when no path is given.
func SearchPaths() []string {
	var paths []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, appName, FileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, FileName))
	}
	return paths
}

// CacheDir returns the cache directory: the configured one, else
// $XDG_CACHE_HOME/dailyart, else ~/.cache/dailyart.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
