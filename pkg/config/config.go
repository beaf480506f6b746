// Package config loads concierge settings through viper: defaults, then a
// YAML file, then CONCIERGE_* environment variables (a .env file can seed
// them), then bound command line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/concierge/pkg/events"
	"github.com/go-go-golems/concierge/pkg/locale"
	"github.com/go-go-golems/concierge/pkg/logging"
	"github.com/go-go-golems/concierge/pkg/session"
	"github.com/go-go-golems/concierge/pkg/transport"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint        = "http://localhost:8787/api/chat"
	DefaultInputLimit      = 500
	DefaultRenderCacheSize = 256
	EnvPrefix              = "CONCIERGE"
)

type Config struct {
	Endpoint        string                `yaml:"endpoint"`
	Transport       string                `yaml:"transport"`
	Language        string                `yaml:"language"`
	PageURL         string                `yaml:"page-url"`
	InputLimit      int                   `yaml:"input-limit"`
	RenderCacheSize int                   `yaml:"render-cache-size"`
	Store           session.StoreSettings `yaml:"store"`
	Events          events.Settings       `yaml:"events"`
	Logging         logging.Settings      `yaml:"logging"`
}

func Default() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		Transport:       transport.KindSSE,
		InputLimit:      DefaultInputLimit,
		RenderCacheSize: DefaultRenderCacheSize,
		Store:           session.StoreSettings{Backend: session.BackendFile},
		Events:          events.DefaultSettings(),
		Logging:         logging.Settings{Level: "info", Format: logging.FormatAuto},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/concierge/config.yaml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locate user config dir")
	}
	return filepath.Join(dir, "concierge", "config.yaml"), nil
}

// NewViper returns a viper instance holding every key of Default() as a
// default and reading CONCIERGE_* variables. Nested keys map to variables with
// dots and dashes replaced by underscores: store.redis-addr is
// CONCIERGE_STORE_REDIS_ADDR.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// defaults register every key, which AutomaticEnv needs to find them
	b, err := yaml.Marshal(Default())
	if err != nil {
		return nil, errors.Wrap(err, "encode defaults")
	}
	var defaults map[string]interface{}
	if err := yaml.Unmarshal(b, &defaults); err != nil {
		return nil, errors.Wrap(err, "decode defaults")
	}
	setDefaults(v, "", defaults)
	return v, nil
}

func setDefaults(v *viper.Viper, prefix string, values map[string]interface{}) {
	for k, val := range values {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]interface{}); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// BindFlags binds command line flags to config keys. flagKeys maps a flag
// name to its dotted config key; flags missing from fs are skipped. Only flags
// set on the command line override lower layers.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, flagKeys map[string]string) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag --%s", name)
		}
	}
	return nil
}

// Load reads the YAML file at path into v, if there is one, and decodes the
// merged layers into a Config. A missing file is fine unless required is set.
// A nil v means NewViper().
func Load(v *viper.Viper, path string, required bool) (Config, error) {
	if v == nil {
		nv, err := NewViper()
		if err != nil {
			return Config{}, err
		}
		v = nv
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) || required {
				return Config{}, errors.Wrapf(err, "read config %s", path)
			}
		} else {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, useYAMLTags); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// useYAMLTags lets viper decode with the same tags the config file uses.
func useYAMLTags(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load %s", p)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint must be set")
	}
	if c.InputLimit <= 0 {
		return errors.Errorf("input-limit must be positive, got %d", c.InputLimit)
	}
	if c.RenderCacheSize < 0 {
		return errors.Errorf("render-cache-size must not be negative, got %d", c.RenderCacheSize)
	}
	switch strings.ToLower(c.Transport) {
	case "", transport.KindSSE, transport.KindWebSocket, "ws":
	default:
		return errors.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}

// ResolvedLanguage is the configured language, or the one from LANG.
func (c Config) ResolvedLanguage() string {
	if strings.TrimSpace(c.Language) != "" {
		return locale.Match(c.Language)
	}
	return locale.FromEnv()
}

func (c Config) TransportSettings() transport.Settings {
	return transport.Settings{Kind: c.Transport, Endpoint: c.Endpoint}
}
