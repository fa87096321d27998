package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHORDSHEET_"

// Config contains runtime options for the song tools.
type Config struct {
	LibraryDir       string        `yaml:"library_dir"`
	SourceURL        string        `yaml:"source_url"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	Workers          int           `yaml:"workers"`
	CachePath        string        `yaml:"cache_path"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	StatePath        string        `yaml:"state_path"`
	StrictDirectives bool          `yaml:"strict_directives"`
	Width            int           `yaml:"width"`
	Color            bool          `yaml:"color"`
	LogLevel         string        `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	return Config{
		LibraryDir:  "./songs",
		HTTPTimeout: 30 * time.Second,
		Workers:     workers,
		CacheTTL:    24 * time.Hour,
		Width:       80,
		Color:       true,
		LogLevel:    "info",
	}
}

// Load builds a Config from defaults, the YAML file at path, the dotenv
// file at envPath and the process environment, in increasing precedence.
// Missing files are skipped; empty paths are ignored.
func Load(path, envPath string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	dotenv := map[string]string{}
	if envPath != "" {
		m, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			dotenv = m
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read env file %s: %w", envPath, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("LIBRARY_DIR", &c.LibraryDir)
	str("SOURCE_URL", &c.SourceURL)
	str("CACHE_PATH", &c.CachePath)
	str("STATE_PATH", &c.StatePath)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "WIDTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWIDTH: %w", EnvPrefix, err)
		}
		c.Width = n
	}
	if v, ok := lookup(EnvPrefix + "STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSTRICT: %w", EnvPrefix, err)
		}
		c.StrictDirectives = b
	}
	if v, ok := lookup(EnvPrefix + "COLOR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOLOR: %w", EnvPrefix, err)
		}
		c.Color = b
	}
	if _, ok := lookup("NO_COLOR"); ok {
		c.Color = false
	}
	if v, ok := lookup(EnvPrefix + "HTTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.HTTPTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_TTL: %w", EnvPrefix, err)
		}
		c.CacheTTL = d
	}
	return nil
}

// RegisterFlags adds the override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("library", d.LibraryDir, "song library directory")
	fs.String("source-url", "", "read songs over HTTP from this base URL")
	fs.Duration("http-timeout", d.HTTPTimeout, "HTTP request timeout")
	fs.Int("workers", d.Workers, "number of concurrent song workers")
	fs.String("cache", "", "library index cache path (default: <library>/.chordsheet/index.json)")
	fs.Duration("cache-ttl", d.CacheTTL, "reuse the library index for this long (0 keeps it until --refresh)")
	fs.String("state", "", "preferred keys file (default: <library>/.chordsheet/keys.json)")
	fs.Bool("strict", false, "reject malformed directive lines")
	fs.Int("width", d.Width, "render width in columns")
	fs.Bool("color", d.Color, "colorize terminal output")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
}

// ApplyFlags copies every flag the user set on fs into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var errs []error
	set := func(name string, apply func() error) {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		if err := apply(); err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", name, err))
		}
	}

	set("library", func() (err error) { c.LibraryDir, err = fs.GetString("library"); return })
	set("source-url", func() (err error) { c.SourceURL, err = fs.GetString("source-url"); return })
	set("http-timeout", func() (err error) { c.HTTPTimeout, err = fs.GetDuration("http-timeout"); return })
	set("workers", func() (err error) { c.Workers, err = fs.GetInt("workers"); return })
	set("cache", func() (err error) { c.CachePath, err = fs.GetString("cache"); return })
	set("cache-ttl", func() (err error) { c.CacheTTL, err = fs.GetDuration("cache-ttl"); return })
	set("state", func() (err error) { c.StatePath, err = fs.GetString("state"); return })
	set("strict", func() (err error) { c.StrictDirectives, err = fs.GetBool("strict"); return })
	set("width", func() (err error) { c.Width, err = fs.GetInt("width"); return })
	set("color", func() (err error) { c.Color, err = fs.GetBool("color"); return })
	set("log-level", func() (err error) { c.LogLevel, err = fs.GetString("log-level"); return })

	return errors.Join(errs...)
}

// Finalize clamps numeric options and fills in derived paths.
func (c *Config) Finalize() error {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Width < 20 {
		c.Width = 20
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if strings.TrimSpace(c.CachePath) == "" {
		c.CachePath = filepath.Join(c.LibraryDir, ".chordsheet", "index.json")
	}
	if strings.TrimSpace(c.StatePath) == "" {
		c.StatePath = filepath.Join(c.LibraryDir, ".chordsheet", "keys.json")
	}
	return nil
}
