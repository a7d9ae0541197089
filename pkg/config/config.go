// Package config loads the reactorcad CLI configuration.
//
// Settings are layered: defaults, then an optional YAML file, then a .env
// file and REACTORCAD_* environment variables. Command-line flags are
// applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/chazu/reactorcad/pkg/engine"
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/reactor"
	"github.com/chazu/reactorcad/pkg/shape"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REACTORCAD_"

// Config is the full CLI configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// Out is the output directory, or the output file for single-file
	// exports.
	Out string `yaml:"out"`
	// CacheSize is the capacity of the shape solid cache.
	CacheSize int `yaml:"cache_size"`
	// Combined additionally writes every member into one STEP or STL file.
	Combined bool `yaml:"combined"`
	// ScriptTimeout bounds the evaluation of a .zy parameter script.
	ScriptTimeout time.Duration `yaml:"script_timeout"`

	Reactor reactor.Config     `yaml:"reactor"`
	SVG     reactor.SVGOptions `yaml:"svg"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		Out:           "out",
		CacheSize:     shape.DefaultCacheSize,
		ScriptTimeout: engine.DefaultTimeout,
		Reactor:       reactor.DefaultConfig(),
		SVG:           reactor.DefaultSVGOptions(),
	}
}

// Load returns the defaults overlaid with the YAML file at path (when path
// is not empty), then the environment. A .env file in the working
// directory is read first when present; it never overrides variables that
// are already set.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errdefs.IO("config.Load", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, errdefs.WithSubject(err, path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errdefs.Invalidf("config.Load", "%v", err)
	}
	return nil
}

// applyEnv overlays REACTORCAD_* variables onto c.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("OUT"); ok {
		c.Out = v
	}
	if v, ok := get("UNITS"); ok {
		c.Reactor.Units = v
	}
	if v, ok := get("SCRIPT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errdefs.Invalidf("config.env", "%sSCRIPT_TIMEOUT: %v", EnvPrefix, err)
		}
		c.ScriptTimeout = d
	}

	ints := map[string]*int{
		"CACHE_SIZE": &c.CacheSize,
		"MESH_CELLS": &c.Reactor.MeshCells,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errdefs.Invalidf("config.env", "%s%s: %v", EnvPrefix, name, err)
			}
			*dst = n
		}
	}
	floats := map[string]*float64{
		"GRAVEYARD_SIZE":   &c.Reactor.GraveyardSize,
		"GRAVEYARD_OFFSET": &c.Reactor.GraveyardOffset,
		"MIN_MESH_SIZE":    &c.Reactor.MinMeshSize,
		"MAX_MESH_SIZE":    &c.Reactor.MaxMeshSize,
	}
	for name, dst := range floats {
		if v, ok := get(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errdefs.Invalidf("config.env", "%s%s: %v", EnvPrefix, name, err)
			}
			*dst = f
		}
	}
	bools := map[string]*bool{
		"INCLUDE_GRAVEYARD": &c.Reactor.IncludeGraveyard,
		"EXCLUDE_PLASMA":    &c.Reactor.ExcludePlasma,
		"COMBINED":          &c.Combined,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errdefs.Invalidf("config.env", "%s%s: %v", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, errdefs.Invalidf("config", "log_level: %v", err)
	}
	return lvl, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.CacheSize <= 0 {
		return errdefs.Invalidf("config", "cache_size must be positive, got %d", c.CacheSize)
	}
	if c.ScriptTimeout <= 0 {
		return errdefs.Invalidf("config", "script_timeout must be positive, got %s", c.ScriptTimeout)
	}
	if err := c.Reactor.Validate(); err != nil {
		return err
	}
	return c.SVG.Validate()
}

// Logger builds a production zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
