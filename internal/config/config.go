// Package config loads carepath settings from defaults, an optional YAML
// file, an optional .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every carepath variable.
const EnvPrefix = "CAREPATH_"

const (
	DefaultBinaryEndpoint     = "https://pytorch-binary-screening-97937849866.us-central1.run.app/predict"
	DefaultMulticlassEndpoint = "https://pytorch-multiclass-diagnostic-97937849866.us-central1.run.app/predict"
)

// Config is the resolved application configuration.
type Config struct {
	// PathwayDir points at a directory of pathway documents. Empty uses the embedded catalog.
	PathwayDir string `mapstructure:"pathway_dir" yaml:"pathway_dir"`
	Port       int    `mapstructure:"port" yaml:"port"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	Debug      bool   `mapstructure:"debug" yaml:"debug"`

	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CacheSize     int           `mapstructure:"cache_size" yaml:"cache_size"`

	BinaryEndpoint     string        `mapstructure:"binary_endpoint" yaml:"binary_endpoint"`
	MulticlassEndpoint string        `mapstructure:"multiclass_endpoint" yaml:"multiclass_endpoint"`
	InferenceTimeout   time.Duration `mapstructure:"inference_timeout" yaml:"inference_timeout"`
}

func defaults() map[string]any {
	return map[string]any{
		"pathway_dir":         "",
		"port":                8080,
		"log_level":           "info",
		"debug":               false,
		"redis_addr":          "",
		"redis_password":      "",
		"redis_db":            0,
		"cache_ttl":           "10m",
		"cache_size":          64,
		"binary_endpoint":     DefaultBinaryEndpoint,
		"multiclass_endpoint": DefaultMulticlassEndpoint,
		"inference_timeout":   "30s",
	}
}

// Load resolves the configuration. path names an optional YAML file; envFiles
// are optional dotenv files (".env" when none are given). Missing files are
// skipped. Variables already present in the environment win over dotenv values.
func Load(path string, envFiles ...string) (*Config, error) {
	raw := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			var file map[string]any
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			for k, v := range file {
				raw[strings.ToLower(k)] = v
			}
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	applyEnv(raw)

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(raw map[string]any) {
	// Unprefixed inference variables, PUBLIC_ first. CAREPATH_ still wins below.
	for _, key := range []string{"binary_endpoint", "multiclass_endpoint"} {
		name := strings.ToUpper(key)
		for _, candidate := range []string{"PUBLIC_" + name, name} {
			if v := os.Getenv(candidate); v != "" {
				raw[key] = v
				break
			}
		}
	}
	for key := range defaults() {
		if v, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(key)); ok {
			raw[key] = v
		}
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("config: cache_size must not be negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: cache_ttl must not be negative")
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
