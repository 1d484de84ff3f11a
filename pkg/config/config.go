// Package config loads pnrjson settings from a config file and the
// environment.
//
// The file is named pnrjson.yaml, pnrjson.toml or pnrjson.json and is looked
// up in the working directory first, then in $XDG_CONFIG_HOME/pnrjson
// (~/.config/pnrjson when XDG_CONFIG_HOME is unset). Every key can be
// overridden by an environment variable with the PNRJSON_ prefix, dots
// replaced by underscores:
//
//	PNRJSON_ORDER=name
//	PNRJSON_CACHE_REDIS_ADDR=localhost:6379
//
// A missing config file is not an error; defaults apply.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/pnrjson/pkg/cache"
	"github.com/matzehuels/pnrjson/pkg/errors"
	"github.com/matzehuels/pnrjson/pkg/netlist"
)

const (
	// Name is the config file base name and the env prefix.
	Name = "pnrjson"

	// DefaultServeAddr is where "pnrjson serve" listens.
	DefaultServeAddr = ":8080"
)

// Config is the complete pnrjson configuration.
type Config struct {
	Creator      string      `mapstructure:"creator"`
	Order        string      `mapstructure:"order"`
	StrictQuotes bool        `mapstructure:"strict_quotes"`
	Gzip         bool        `mapstructure:"gzip"`
	Log          LogConfig   `mapstructure:"log"`
	Cache        CacheConfig `mapstructure:"cache"`
	Serve        ServeConfig `mapstructure:"serve"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CacheConfig contains artifact cache configuration.
type CacheConfig struct {
	Dir       string        `mapstructure:"dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ServeConfig contains HTTP service configuration.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Order: netlist.OrderDeclaration.String(),
		Log:   LogConfig{Level: "info"},
		Cache: CacheConfig{TTL: cache.TTLArtifact},
		Serve: ServeConfig{Addr: DefaultServeAddr},
	}
}

// Load reads the configuration, searching the working directory and the
// user config directory.
func Load() (*Config, error) {
	return load(".", userConfigDir())
}

// LoadFile reads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
	}
	return decode(v)
}

func load(paths ...string) (*Config, error) {
	v := newViper()
	v.SetConfigName(Name)
	for _, p := range paths {
		if p != "" {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config")
		}
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("creator", def.Creator)
	v.SetDefault("order", def.Order)
	v.SetDefault("strict_quotes", def.StrictQuotes)
	v.SetDefault("gzip", def.Gzip)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("cache.redis_addr", def.Cache.RedisAddr)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("serve.addr", def.Serve.Addr)

	v.SetEnvPrefix(Name)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have a fixed vocabulary.
func (c *Config) Validate() error {
	if _, err := netlist.ParseOrder(c.Order); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config order")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config log.level")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config cache.ttl must not be negative")
	}
	return nil
}

// LogLevel returns the configured log level, info when unset.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/pnrjson (~/.cache/pnrjson).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, Name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", Name), nil
}

func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, Name)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", Name)
}
