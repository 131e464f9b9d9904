// Package config loads songsheet.toml, the optional per-project defaults
// for the songsheet CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name searched for by Find.
const FileName = "songsheet.toml"

// Config mirrors the sections of songsheet.toml.
type Config struct {
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Parse       ParseConfig       `toml:"parse"`
	Format      FormatConfig      `toml:"format"`
	Log         LogConfig         `toml:"log"`
}

type DiagnosticsConfig struct {
	Max   int    `toml:"max"`
	Color string `toml:"color"` // auto|on|off
}

type ParseConfig struct {
	Format string `toml:"format"` // tree|json|msgpack
	Jobs   int    `toml:"jobs"`
}

// FormatConfig drives `songsheet fmt`.
type FormatConfig struct {
	Indent int  `toml:"indent"`
	Tabs   bool `toml:"tabs"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Manifest is a decoded config together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the values used when no songsheet.toml exists.
func Default() Config {
	return Config{
		Diagnostics: DiagnosticsConfig{Max: 100, Color: "auto"},
		Parse:       ParseConfig{Format: "tree"},
		Format:      FormatConfig{Indent: 2},
		Log:         LogConfig{Level: "warn"},
	}
}

var (
	validColors  = []string{"auto", "on", "off"}
	validFormats = []string{"tree", "json", "msgpack"}
)

// Find walks up from startDir looking for songsheet.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest songsheet.toml. When none exists it
// returns a manifest holding Default() and ok == false.
func Discover(startDir string) (manifest *Manifest, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Default()}, false, nil
	}
	m, err := LoadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadManifest decodes the config file at path.
func LoadManifest(path string) (*Manifest, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Load decodes path over Default(); keys missing from the file keep their
// default values. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and numeric ranges.
func (c Config) Validate() error {
	if c.Diagnostics.Max < 0 {
		return fmt.Errorf("[diagnostics].max must be >= 0, got %d", c.Diagnostics.Max)
	}
	if !oneOf(c.Diagnostics.Color, validColors) {
		return fmt.Errorf("[diagnostics].color must be one of %s, got %q", strings.Join(validColors, "|"), c.Diagnostics.Color)
	}
	if !oneOf(c.Parse.Format, validFormats) {
		return fmt.Errorf("[parse].format must be one of %s, got %q", strings.Join(validFormats, "|"), c.Parse.Format)
	}
	if c.Parse.Jobs < 0 {
		return fmt.Errorf("[parse].jobs must be >= 0, got %d", c.Parse.Jobs)
	}
	if c.Format.Indent < 1 || c.Format.Indent > 8 {
		return fmt.Errorf("[format].indent must be in 1..8, got %d", c.Format.Indent)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
