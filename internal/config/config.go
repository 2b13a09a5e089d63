// Package config loads server settings from an optional TOML file,
// with environment variables overriding file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the server binary needs.
type Config struct {
	Addr string `toml:"addr"`
	Mode string `toml:"mode"` // languagetool | openai | gemini | local

	// languagetool mode
	LangToolURL  string `toml:"langtool_url"`
	LangToolLang string `toml:"langtool_lang"`

	// openai mode
	OpenAIKey   string `toml:"openai_key"`
	OpenAIModel string `toml:"openai_model"`
	OpenAIURL   string `toml:"openai_url"`

	// gemini mode
	GeminiKey   string `toml:"gemini_key"`
	GeminiModel string `toml:"gemini_model"`

	// local mode
	DictFile string `toml:"dict_file"`

	// result cache; empty RedisURL disables caching
	RedisURL    string        `toml:"redis_url"`
	CacheTTL    time.Duration `toml:"-"`
	CacheTTLSec int           `toml:"cache_ttl_seconds"`
}

// Load reads path (skipped when empty or missing) and applies env
// overrides on top.
func Load(path string) (Config, error) {
	cfg := Config{
		Addr:         ":8080",
		Mode:         "languagetool",
		LangToolURL:  "https://api.languagetool.org",
		LangToolLang: "en-US",
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config: decode %s: %w", path, err)
			}
		}
	}

	cfg.Addr = getenv("QUILL_ADDR", cfg.Addr)
	cfg.Mode = getenv("QUILL_MODE", cfg.Mode)
	cfg.LangToolURL = getenv("LANGTOOL_URL", cfg.LangToolURL)
	cfg.LangToolLang = getenv("LANGTOOL_LANG", cfg.LangToolLang)
	cfg.OpenAIKey = getenv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.OpenAIModel = getenv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAIURL = getenv("OPENAI_BASE_URL", cfg.OpenAIURL)
	cfg.GeminiKey = getenv("GEMINI_API_KEY", cfg.GeminiKey)
	cfg.GeminiModel = getenv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.DictFile = getenv("QUILL_DICT_FILE", cfg.DictFile)
	cfg.RedisURL = getenv("REDIS_URL", cfg.RedisURL)
	cfg.CacheTTLSec = getenvInt("QUILL_CACHE_TTL_SECONDS", cfg.CacheTTLSec)
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSec) * time.Second

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
