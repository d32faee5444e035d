// Package config loads the engine configuration file.
//
// The file is INI. Missing keys fall back to the defaults below, which are
// loaded as the first source so a user file only needs the keys it changes:
//
//	[memory]
//	global      = 8MB
//	global_copy = 1MB
//	level       = 16MB
//	level_copy  = 4MB
//	frame       = 256KB
//
//	[log]
//	enabled = false
//	dir     =
//	level   = info
//
//	[resources]
//	root   = assets
//	global =
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c2h5oh/datasize"
	"gopkg.in/ini.v1"

	"github.com/maskerad/stackmem/alloc"
	"github.com/maskerad/stackmem/internal/logger"
)

// ErrInvalid is returned (wrapped) for values that fail to parse.
var ErrInvalid = errors.New("config: invalid value")

const defaultConfig = `
[memory]
global      = 8MB
global_copy = 1MB
level       = 16MB
level_copy  = 4MB
frame       = 256KB

[log]
enabled = false
dir     =
level   = info

[resources]
root   = assets
global =
`

// Config is the parsed engine configuration.
type Config struct {
	Memory    Memory
	Log       Log
	Resources Resources
}

// Memory holds region capacities.
type Memory struct {
	Global     datasize.ByteSize
	GlobalCopy datasize.ByteSize
	Level      datasize.ByteSize
	LevelCopy  datasize.ByteSize
	Frame      datasize.ByteSize // each of the two per-frame buffers
}

// Log mirrors logger.Options.
type Log struct {
	Enabled bool
	Dir     string
	Level   slog.Level
}

// Resources locates asset files.
type Resources struct {
	Root   string   // asset directory, relative to the working directory
	Global []string // loaded at startup and kept for the process lifetime
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults: %v", err))
	}
	return c
}

// Parse reads a configuration from data layered over the defaults.
func Parse(data []byte) (*Config, error) {
	sources := []any{[]byte(defaultConfig)}
	if len(data) > 0 {
		sources = append(sources, data)
	}
	return load(sources...)
}

// Load reads the configuration file at path layered over the defaults.
func Load(path string) (*Config, error) {
	c, err := load([]byte(defaultConfig), path)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func load(sources ...any) (*Config, error) {
	opts := ini.LoadOptions{
		Insensitive:             true,
		SkipUnrecognizableLines: true,
	}
	f, err := ini.LoadSources(opts, sources[0], sources[1:]...)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	var c Config
	mem := f.Section("memory")
	for _, field := range []struct {
		key string
		dst *datasize.ByteSize
	}{
		{"global", &c.Memory.Global},
		{"global_copy", &c.Memory.GlobalCopy},
		{"level", &c.Memory.Level},
		{"level_copy", &c.Memory.LevelCopy},
		{"frame", &c.Memory.Frame},
	} {
		if err := parseSize(mem.Key(field.key).String(), field.dst); err != nil {
			return nil, fmt.Errorf("%w: memory.%s: %w", ErrInvalid, field.key, err)
		}
	}

	logSec := f.Section("log")
	if c.Log.Enabled, err = logSec.Key("enabled").Bool(); err != nil {
		return nil, fmt.Errorf("%w: log.enabled: %w", ErrInvalid, err)
	}
	c.Log.Dir = logSec.Key("dir").String()
	if c.Log.Level, err = logger.ParseLevel(logSec.Key("level").String()); err != nil {
		return nil, fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}

	res := f.Section("resources")
	c.Resources.Root = res.Key("root").String()
	for _, p := range res.Key("global").Strings(",") {
		if p = strings.TrimSpace(p); p != "" {
			c.Resources.Global = append(c.Resources.Global, p)
		}
	}
	return &c, nil
}

func parseSize(s string, dst *datasize.ByteSize) error {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		*dst = 0
		return nil
	}
	return dst.UnmarshalText([]byte(s))
}

// Capacities converts the memory section to allocator capacities.
func (c *Config) Capacities() alloc.Capacities {
	return alloc.Capacities{
		Global:     int(c.Memory.Global.Bytes()),
		GlobalCopy: int(c.Memory.GlobalCopy.Bytes()),
		Level:      int(c.Memory.Level.Bytes()),
		LevelCopy:  int(c.Memory.LevelCopy.Bytes()),
	}
}

// LoggerOptions converts the log section to logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Enabled: c.Log.Enabled,
		LogDir:  c.Log.Dir,
		Level:   c.Log.Level,
	}
}
