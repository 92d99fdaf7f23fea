// Package config loads the editor's keymap and server identity from a TOML or
// YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"blockeditor/internal/domain"
	"blockeditor/internal/input"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "BLOCKEDITOR_CONFIG"

type Config struct {
	Server ServerConfig `toml:"server" yaml:"server"`
	Keymap KeymapConfig `toml:"keymap" yaml:"keymap"`
}

type ServerConfig struct {
	Name    string `toml:"name" yaml:"name"`
	Version string `toml:"version" yaml:"version"`
}

// KeymapConfig binds key chords to editing operations. Formats and Blocks map
// a chord ("Ctrl+b") to an element kind ("bold", "h1").
type KeymapConfig struct {
	Split   string            `toml:"split" yaml:"split"`
	Merge   string            `toml:"merge" yaml:"merge"`
	Formats map[string]string `toml:"formats" yaml:"formats"`
	Blocks  map[string]string `toml:"blocks" yaml:"blocks"`
}

// ParseError reports a config file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Name: "blockeditor", Version: "1.0.0"},
		Keymap: KeymapConfig{
			Split: input.KeyEnter,
			Merge: input.KeyBackspace,
			Formats: map[string]string{
				"Ctrl+b": string(domain.ElementBold),
				"Meta+b": string(domain.ElementBold),
			},
			Blocks: map[string]string{
				"Ctrl+Alt+0": string(domain.ElementParagraph),
				"Ctrl+Alt+1": string(domain.ElementH1),
				"Ctrl+Alt+2": string(domain.ElementH2),
				"Ctrl+Alt+3": string(domain.ElementH3),
			},
		},
	}
}

// Path returns the config file path from the environment, falling back to
// ~/.config/blockeditor/config.toml.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "blockeditor", "config.toml")
}

// Load reads the config at path. A missing file is not an error and yields
// Default(); fields left empty in the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Compile(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	var fileCfg Config
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fileCfg)
	case ".toml", "":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&fileCfg)
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	cfg.merge(fileCfg)
	return nil
}

func (c *Config) merge(o Config) {
	if o.Server.Name != "" {
		c.Server.Name = o.Server.Name
	}
	if o.Server.Version != "" {
		c.Server.Version = o.Server.Version
	}
	if o.Keymap.Split != "" {
		c.Keymap.Split = o.Keymap.Split
	}
	if o.Keymap.Merge != "" {
		c.Keymap.Merge = o.Keymap.Merge
	}
	if o.Keymap.Formats != nil {
		c.Keymap.Formats = o.Keymap.Formats
	}
	if o.Keymap.Blocks != nil {
		c.Keymap.Blocks = o.Keymap.Blocks
	}
}

// Binding pairs a chord with the element kind it applies.
type Binding struct {
	Chord input.Chord
	Kind  domain.ElementType
}

// Keymap is a parsed, validated KeymapConfig.
type Keymap struct {
	Split   input.Chord
	Merge   input.Chord
	Formats []Binding
	Blocks  []Binding
}

// Compile parses every chord and checks every kind in the keymap.
func (c *Config) Compile() (*Keymap, error) {
	km := &Keymap{}
	var err error
	if km.Split, err = input.ParseChord(c.Keymap.Split); err != nil {
		return nil, fmt.Errorf("keymap.split: %w", err)
	}
	if km.Merge, err = input.ParseChord(c.Keymap.Merge); err != nil {
		return nil, fmt.Errorf("keymap.merge: %w", err)
	}
	if km.Formats, err = compileBindings("keymap.formats", c.Keymap.Formats, true); err != nil {
		return nil, err
	}
	if km.Blocks, err = compileBindings("keymap.blocks", c.Keymap.Blocks, false); err != nil {
		return nil, err
	}
	return km, nil
}

func compileBindings(section string, m map[string]string, inline bool) ([]Binding, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Binding, 0, len(m))
	for _, name := range names {
		chord, err := input.ParseChord(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", section, err)
		}
		kind := domain.ElementType(m[name])
		if !kind.Valid() || kind.IsInline() != inline {
			return nil, fmt.Errorf("%s: %q is not a valid kind for %s", section, kind, name)
		}
		out = append(out, Binding{Chord: chord, Kind: kind})
	}
	return out, nil
}

// Format returns the inline kind bound to a key event, if any.
func (k *Keymap) Format(key string, mods input.Modifier) (domain.ElementType, bool) {
	return match(k.Formats, key, mods)
}

// Block returns the block kind bound to a key event, if any.
func (k *Keymap) Block(key string, mods input.Modifier) (domain.ElementType, bool) {
	return match(k.Blocks, key, mods)
}

func match(bs []Binding, key string, mods input.Modifier) (domain.ElementType, bool) {
	for _, b := range bs {
		if b.Chord.Matches(key, mods) {
			return b.Kind, true
		}
	}
	return "", false
}
