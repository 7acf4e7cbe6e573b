package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable the service reads.
const EnvPrefix = "FICHE_"

const (
	ConfigFileEnv     = "FICHE_CONFIG"
	DefaultConfigFile = "fiche.yaml"
)

// Config is the runtime configuration of the server and the CLI.
type Config struct {
	Port                     string   `koanf:"port"`
	Mode                     string   `koanf:"mode"`
	GeminiAPIKey             string   `koanf:"gemini_api_key"`
	GeminiModel              string   `koanf:"gemini_model"`
	ImageModel               string   `koanf:"image_model"`
	ImagesEnabled            bool     `koanf:"images_enabled"`
	SessionSecret            string   `koanf:"session_secret"`
	AllowedOrigins           []string `koanf:"allowed_origins"`
	DiscordWebhookURL        string   `koanf:"discord_webhook_url"`
	ExportCooldownMS         int      `koanf:"export_cooldown_ms"`
	StoreCapacity            int      `koanf:"store_capacity"`
	LogoURL                  string   `koanf:"logo_url"`
	BackgroundURL            string   `koanf:"background_url"`
	GenerationTimeoutSeconds int      `koanf:"generation_timeout_seconds"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Port:                     "8080",
		Mode:                     "dev",
		GeminiModel:              "gemini-2.5-flash",
		ImageModel:               "imagen-4.0-generate-001",
		AllowedOrigins:           []string{"http://localhost:5173"},
		ExportCooldownMS:         300,
		StoreCapacity:            256,
		GenerationTimeoutSeconds: 120,
	}
}

// Load reads an optional .env file into the process environment, then builds
// the configuration from the defaults, an optional YAML file (FICHE_CONFIG,
// default fiche.yaml) and FICHE_* variables, in that order.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")

	path := os.Getenv(ConfigFileEnv)
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// The upstream SDK examples all use the bare variable name.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.AllowedOrigins = trimOrigins(cfg.AllowedOrigins)

	return cfg, nil
}

// trimOrigins splits comma lists, since the env provider hands over a single
// string, and drops blanks and trailing slashes.
func trimOrigins(origins []string) []string {
	var out []string
	for _, entry := range origins {
		for _, o := range strings.Split(entry, ",") {
			o = strings.TrimSuffix(strings.TrimSpace(o), "/")
			if o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("gemini_model is required")
	}
	if c.ExportCooldownMS < 0 {
		return fmt.Errorf("export_cooldown_ms must be non-negative")
	}
	if c.StoreCapacity <= 0 {
		return fmt.Errorf("store_capacity must be positive")
	}
	if c.GenerationTimeoutSeconds <= 0 {
		return fmt.Errorf("generation_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) ExportCooldown() time.Duration {
	return time.Duration(c.ExportCooldownMS) * time.Millisecond
}

func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}
