package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store      string        `mapstructure:"store" yaml:"store,omitempty" validate:"required"`
	Out        string        `mapstructure:"out" yaml:"out,omitempty" validate:"required"`
	Cache      bool          `mapstructure:"cache" yaml:"cache"`
	CacheDir   string        `mapstructure:"cache_dir" yaml:"cache_dir,omitempty"`
	Definition string        `mapstructure:"definition" yaml:"definition,omitempty" validate:"omitempty,file"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty" validate:"gte=0"`
}

const (
	DefaultStore   = ".promptflow/documents"
	DefaultOut     = "."
	DefaultTimeout = 2 * time.Minute
)

// Keys lists the settable keys in display order.
var Keys = []string{"store", "out", "cache", "cache_dir", "definition", "timeout"}

var (
	configFile = ".promptflow.yaml"
	v          *viper.Viper
	validate   = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	v = newViper()

	// Try to read config file (ignore if not exists)
	_ = v.ReadInConfig()
}

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetConfigFile(configFile)

	// Defaults
	nv.SetDefault("store", DefaultStore)
	nv.SetDefault("out", DefaultOut)
	nv.SetDefault("cache", true)
	nv.SetDefault("cache_dir", "")
	nv.SetDefault("definition", "")
	nv.SetDefault("timeout", DefaultTimeout)

	// Environment variables
	nv.SetEnvPrefix("PROMPTFLOW")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	return nv
}

func Path() string {
	return configFile
}

// Load returns the merged configuration: defaults, file, then environment.
func Load() (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("config %s must not be empty", keyOf(fe.Field()))
		case "file":
			return fmt.Errorf("config %s: %v is not a file", keyOf(fe.Field()), fe.Value())
		default:
			return fmt.Errorf("config %s: invalid value %v", keyOf(fe.Field()), fe.Value())
		}
	}
	return err
}

func keyOf(field string) string {
	switch field {
	case "CacheDir":
		return "cache_dir"
	default:
		return strings.ToLower(field)
	}
}

func Get(key string) (string, error) {
	switch key {
	case "store", "out", "cache_dir", "definition":
		return v.GetString(key), nil
	case "cache":
		return strconv.FormatBool(v.GetBool(key)), nil
	case "timeout":
		return v.GetDuration(key).String(), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func Set(key, value string) error {
	cfg, err := Load()
	if err != nil {
		cfg = &Config{}
	}

	var typed any = value
	switch key {
	case "store":
		cfg.Store = value
	case "out":
		cfg.Out = value
	case "cache_dir":
		cfg.CacheDir = value
	case "definition":
		cfg.Definition = value
	case "cache":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache must be true or false: %w", err)
		}
		cfg.Cache, typed = b, b
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("timeout must be a duration like 90s or 2m: %w", err)
		}
		cfg.Timeout, typed = d, d
	default:
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	v.Set(key, typed) // keep viper in sync
	return writeConfig(cfg)
}

func writeConfig(cfg *Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	if dir := filepath.Dir(configFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(configFile, buf.Bytes(), 0o644)
}

func All() (map[string]string, error) {
	all := make(map[string]string, len(Keys))
	for _, key := range Keys {
		val, err := Get(key)
		if err != nil {
			return nil, err
		}
		all[key] = val
	}
	return all, nil
}

// Save saves the full config
func Save(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return writeConfig(c)
}

// ResetForTest points the config at dir and drops loaded values (only use in tests)
func ResetForTest(dir string) {
	configFile = filepath.Join(dir, ".promptflow.yaml")
	v = newViper()
	_ = v.ReadInConfig()
}
