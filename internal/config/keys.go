package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key      string
	typ      keyType
	env      string
	secret   bool
	apply    func(cfg *Config, v any)
	extract  func(cfg Config) any
	validate func(string) error // checks a raw value given to `config set`
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "MEMOJO_SERVER_PORT",
		apply:    func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract:  func(cfg Config) any { return cfg.Server.Port },
		validate: portNumber,
	},
	{
		key: "server.mcp_enabled", typ: kBool, env: "MEMOJO_SERVER_MCP_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPEnabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Server.MCPEnabled },
	},
	{
		key: "genai.base_url", typ: kString, env: "MEMOJO_GENAI_BASE_URL",
		apply:    func(cfg *Config, v any) { cfg.GenAI.BaseURL = v.(string) },
		extract:  func(cfg Config) any { return cfg.GenAI.BaseURL },
		validate: httpURL,
	},
	{
		key: "genai.api_key", typ: kString, env: "MEMOJO_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.GenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.GenAI.APIKey },
	},
	{
		key: "genai.text_model", typ: kString, env: "MEMOJO_GENAI_TEXT_MODEL",
		apply:   func(cfg *Config, v any) { cfg.GenAI.TextModel = v.(string) },
		extract: func(cfg Config) any { return cfg.GenAI.TextModel },
	},
	{
		key: "genai.transcribe_model", typ: kString, env: "MEMOJO_GENAI_TRANSCRIBE_MODEL",
		apply:   func(cfg *Config, v any) { cfg.GenAI.TranscribeModel = v.(string) },
		extract: func(cfg Config) any { return cfg.GenAI.TranscribeModel },
	},
	{
		key: "genai.image_size", typ: kString, env: "MEMOJO_GENAI_IMAGE_SIZE",
		apply:    func(cfg *Config, v any) { cfg.GenAI.ImageSize = v.(string) },
		extract:  func(cfg Config) any { return cfg.GenAI.ImageSize },
		validate: oneOf("256x256", "512x512", "1024x1024"),
	},
	{
		key: "genai.timeout", typ: kString, env: "MEMOJO_GENAI_TIMEOUT",
		apply:    func(cfg *Config, v any) { cfg.GenAI.Timeout = v.(string) },
		extract:  func(cfg Config) any { return cfg.GenAI.Timeout },
		validate: positiveDuration,
	},
	{
		key: "storage.data_dir", typ: kString, env: "MEMOJO_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "feed.ttl", typ: kString, env: "MEMOJO_FEED_TTL",
		apply:    func(cfg *Config, v any) { cfg.Feed.TTL = v.(string) },
		extract:  func(cfg Config) any { return cfg.Feed.TTL },
		validate: positiveDuration,
	},
	{
		key: "log.level", typ: kString, env: "MEMOJO_LOG_LEVEL",
		apply:    func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract:  func(cfg Config) any { return cfg.Log.Level },
		validate: oneOf("debug", "info", "warn", "error"),
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					slog.Warn("could not parse bool from config key, using default", "key", s.key, "value", v, "error", err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				slog.Warn("could not parse integer from env var, using default", "env", s.env, "value", raw, "error", err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				slog.Warn("could not parse bool from env var, using default", "env", s.env, "value", raw, "error", err)
			}
		}
	}
}
