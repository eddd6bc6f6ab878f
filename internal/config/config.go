// Package config loads reqtabs settings from defaults, an optional YAML
// file, REQTABS_* environment variables and command-line flags, in that
// order of precedence (flags win).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "REQTABS"

// ErrInvalid is returned for settings that load but make no sense.
var ErrInvalid = errors.New("invalid configuration")

// HTTP configures the request executor.
type HTTP struct {
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	Insecure        bool          `mapstructure:"insecure" yaml:"insecure"`
}

// Layout configures the tabbed view.
type Layout struct {
	// Chrome is the number of rows reserved for the tab bar and footers.
	Chrome int `mapstructure:"chrome" yaml:"chrome"`
}

// Log configures the file logger.
type Log struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// Env points at the environment file and the one to start with.
type Env struct {
	File string `mapstructure:"file" yaml:"file"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Tabs points at a YAML file of records opened at startup.
type Tabs struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Config is the decoded configuration.
type Config struct {
	HTTP   HTTP   `mapstructure:"http" yaml:"http"`
	Layout Layout `mapstructure:"layout" yaml:"layout"`
	Log    Log    `mapstructure:"log" yaml:"log"`
	Env    Env    `mapstructure:"env" yaml:"env"`
	Tabs   Tabs   `mapstructure:"tabs" yaml:"tabs"`
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"config":   "config",
	"timeout":  "http.timeout",
	"insecure": "http.insecure",
	"chrome":   "layout.chrome",
	"debug":    "log.debug",
	"log-file": "log.path",
	"env-file": "env.file",
	"env":      "env.name",
	"tabs":     "tabs.file",
}

// New returns a viper instance with defaults and environment overrides
// installed.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("config", "")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.follow_redirects", true)
	v.SetDefault("http.insecure", false)
	v.SetDefault("layout.chrome", 4)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.path", "")
	v.SetDefault("env.file", "")
	v.SetDefault("env.name", "")
	v.SetDefault("tabs.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every known flag present in flags to its key.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// DefaultPath returns ~/.config/reqtabs/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reqtabs", "config.yaml"), nil
}

// Load reads the config file and decodes everything into a Config. An
// explicitly named file must exist; a missing default file is ignored.
func Load(v *viper.Viper) (Config, error) {
	path := strings.TrimSpace(v.GetString("config"))
	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative sizes and durations.
func (c Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("%w: http.timeout must not be negative", ErrInvalid)
	}
	if c.Layout.Chrome < 0 {
		return fmt.Errorf("%w: layout.chrome must not be negative", ErrInvalid)
	}
	return nil
}
