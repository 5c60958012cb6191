// Package config loads fontfetch settings from a TOML file.
//
// Every field has a default, so a missing file at the default location is
// not an error. Flags override file values after loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/matzehuels/fontfetch/pkg/cache"
	ferrors "github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/integrations/googlefonts"
)

// AppName names the XDG directories.
const AppName = "fontfetch"

// Defaults.
const (
	DefaultCatalogTTL  = 24 * time.Hour
	DefaultHTTPTimeout = 30 * time.Second
	DefaultListen      = "127.0.0.1:8089"
	DefaultDPI         = 72
	DefaultFetchTries  = 3
	DefaultFetchDelay  = 500 * time.Millisecond
)

// Duration accepts Go duration strings ("30s", "5m") or integer seconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		*d = Duration(v)
		return nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration %q", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full settings set.
type Config struct {
	CatalogURL  string   `toml:"catalog_url"`
	APIKey      string   `toml:"api_key"`
	FileBaseURL string   `toml:"file_base_url"`
	DataDir     string   `toml:"data_dir"`
	CacheDir    string   `toml:"cache_dir"`
	CatalogTTL  Duration `toml:"catalog_ttl"`
	HTTPTimeout Duration `toml:"http_timeout"`

	// FetchAttempts and FetchRetryDelay apply to `catalog fetch` only.
	// Acquisition makes a single attempt per stage.
	FetchAttempts   int      `toml:"fetch_attempts"`
	FetchRetryDelay Duration `toml:"fetch_retry_delay"`

	CacheBackend string  `toml:"cache_backend"`
	RedisAddr    string  `toml:"redis_addr"`
	RedisDB      int     `toml:"redis_db"`
	MaxDownload  int64   `toml:"max_download_bytes"`
	DPI          float64 `toml:"dpi"`
	Listen       string  `toml:"listen"`
	LogFile      string  `toml:"log_file"`
}

// DefaultPath is $XDG_CONFIG_HOME/fontfetch/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, or DefaultPath when path is empty. Only an explicitly
// named file has to exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	var c Config
	md, err := toml.DecodeFile(path, &c)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, ferrors.New(ferrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.CatalogURL == "" {
		c.CatalogURL = googlefonts.DefaultBaseURL
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(xdg.DataHome, AppName)
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(xdg.CacheHome, AppName)
	}
	if c.CatalogTTL == 0 {
		c.CatalogTTL = Duration(DefaultCatalogTTL)
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = Duration(DefaultHTTPTimeout)
	}
	if c.FetchAttempts == 0 {
		c.FetchAttempts = DefaultFetchTries
	}
	if c.FetchRetryDelay == 0 {
		c.FetchRetryDelay = Duration(DefaultFetchDelay)
	}
	if c.CacheBackend == "" {
		c.CacheBackend = cache.BackendFile
	}
	if c.DPI == 0 {
		c.DPI = DefaultDPI
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

// Validate checks field semantics.
func (c *Config) Validate() error {
	if err := ferrors.ValidateURL(c.CatalogURL); err != nil {
		return fieldError("catalog_url", err.Error())
	}
	if c.FileBaseURL != "" {
		if _, err := url.Parse(c.FileBaseURL); err != nil {
			return fieldError("file_base_url", err.Error())
		}
	}
	if c.CatalogTTL < 0 {
		return fieldError("catalog_ttl", "must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return fieldError("http_timeout", "must be positive")
	}
	if c.FetchAttempts < 1 {
		return fieldError("fetch_attempts", "must be at least 1")
	}
	if c.FetchRetryDelay < 0 {
		return fieldError("fetch_retry_delay", "must not be negative")
	}
	switch c.CacheBackend {
	case cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.RedisAddr == "" {
			return fieldError("redis_addr", "required for the redis backend")
		}
	default:
		return fieldError("cache_backend", "must be file, redis or none")
	}
	if c.MaxDownload < 0 {
		return fieldError("max_download_bytes", "must not be negative")
	}
	if c.DPI < 0 {
		return fieldError("dpi", "must not be negative")
	}
	return nil
}

// StorageDir is where font files and the name dictionary live.
func (c *Config) StorageDir() string { return c.DataDir }

// ResponseCacheDir is where the file cache backend keeps catalog responses.
func (c *Config) ResponseCacheDir() string { return filepath.Join(c.CacheDir, "http") }

// CacheOptions returns the backend selection for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.CacheBackend,
		Dir:       c.ResponseCacheDir(),
		RedisAddr: c.RedisAddr,
		RedisDB:   c.RedisDB,
	}
}

func fieldError(field, msg string) error {
	return ferrors.New(ferrors.ErrCodeInvalidConfig, "config %s: %s", field, msg)
}
