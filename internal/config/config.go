package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	GenAI   GenAIConfig
	Storage StorageConfig
	Feed    FeedConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port       int
	MCPEnabled bool
}

// GenAIConfig points at an OpenAI-compatible text, speech and image API.
type GenAIConfig struct {
	BaseURL         string
	APIKey          string
	TextModel       string
	TranscribeModel string
	ImageSize       string
	Timeout         string
}

type StorageConfig struct {
	DataDir string
}

type FeedConfig struct {
	TTL string
}

type LogConfig struct {
	Level string
}

// fallbackAPIKeyEnv is the conventional variable name used by OpenAI tooling.
const fallbackAPIKeyEnv = "OPENAI_API_KEY"

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:       4100,
			MCPEnabled: true,
		},
		GenAI: GenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			TextModel:       "gpt-3.5-turbo",
			TranscribeModel: "whisper-1",
			ImageSize:       "512x512",
			Timeout:         "60s",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Feed: FeedConfig{
			TTL: "1h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, a .env file in
// the working directory, environment variables, and the platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.memojo.app) and secrets
// fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/memojo/config.json
// and secrets fall back to $XDG_DATA_HOME/memojo/secrets.json.
//
// Environment variables (MEMOJO_*) override backend values on all platforms.
func Load() (Config, error) {
	loadDotEnv(".env")
	return loadWith(newPlatformBackend(), NewKeychain())
}

// loadDotEnv copies variables from path into the process environment.
// Variables already set in the environment win.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "path", path, "error", err)
	}
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.GenAI.APIKey == "" {
		cfg.GenAI.APIKey = strings.TrimSpace(os.Getenv(fallbackAPIKeyEnv))
	}
	if cfg.GenAI.APIKey == "" {
		if key, err := kc.Get(keychainService, apiKeyAccount); err == nil && key != "" {
			cfg.GenAI.APIKey = key
		}
	}

	if cfg.GenAI.APIKey == "" {
		msg := "missing required config: OpenAI API key. " +
			"Set it via environment variable MEMOJO_OPENAI_API_KEY or " + fallbackAPIKeyEnv +
			" (a .env file in the working directory is read too)" +
			apiKeyHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}

// FeedTTL parses Feed.TTL, falling back to one hour on a bad value.
func (c Config) FeedTTL() time.Duration {
	return parseDurationOr(c.Feed.TTL, time.Hour, "feed.ttl")
}

// GenAITimeout parses GenAI.Timeout, falling back to 60 seconds on a bad value.
func (c Config) GenAITimeout() time.Duration {
	return parseDurationOr(c.GenAI.Timeout, 60*time.Second, "genai.timeout")
}

func parseDurationOr(raw string, def time.Duration, key string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}
