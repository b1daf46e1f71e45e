package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// Cache backends
const (
	CacheOff    = "off"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DefaultContextURL is the page fetched as external context by the RAG examples
const DefaultContextURL = "https://mj.akgns.com"

// Config is the complete runtime configuration
type Config struct {
	LLM     llm.ClientConfig `json:"llm" yaml:"llm" toml:"llm"`
	Cache   CacheConfig      `json:"cache" yaml:"cache" toml:"cache"`
	Retry   llm.RetryConfig  `json:"retry" yaml:"retry" toml:"retry"`
	Log     LogConfig        `json:"log" yaml:"log" toml:"log"`
	Fetch   FetchConfig      `json:"fetch" yaml:"fetch" toml:"fetch"`
	Program ProgramConfig    `json:"program" yaml:"program" toml:"program"`
}

// CacheConfig selects and configures the LM response cache
type CacheConfig struct {
	// Backend is one of "off" (or empty), "memory" or "redis".
	Backend string        `json:"backend" yaml:"backend" toml:"backend"`
	TTL     time.Duration `json:"ttl" yaml:"ttl" toml:"ttl"`
	Redis   RedisConfig   `json:"redis" yaml:"redis" toml:"redis"`
}

// Enabled reports whether a cache backend is selected
func (c CacheConfig) Enabled() bool {
	return c.Backend != "" && c.Backend != CacheOff
}

// RedisConfig holds the connection settings of the redis cache backend
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" toml:"password"`
	DB       int    `json:"db" yaml:"db" toml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix" toml:"prefix"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// FetchConfig configures retrieval of the external context blob
type FetchConfig struct {
	URL       string        `json:"url" yaml:"url" toml:"url"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	UserAgent string        `json:"user_agent" yaml:"user_agent" toml:"user_agent"`
	MaxBytes  int64         `json:"max_bytes" yaml:"max_bytes" toml:"max_bytes"`
}

// ProgramConfig holds generation defaults shared by all programs
type ProgramConfig struct {
	// Temperature is sent with every request when non-nil.
	Temperature *float32 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature"`
	// MaxTokens is sent with every request when positive.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	// MaxIters overrides the iteration limit of tool-using programs when positive.
	MaxIters int `json:"max_iters" yaml:"max_iters" toml:"max_iters"`
	// NumWorkers bounds concurrency of parallel dispatch.
	NumWorkers int `json:"num_workers" yaml:"num_workers" toml:"num_workers"`
}

// Default returns the built-in configuration: a local Ollama server with
// llama3.2:3b, no API key, no cache and no retries.
func Default() *Config {
	return &Config{
		LLM: llm.DefaultClientConfig(),
		Cache: CacheConfig{
			Backend: CacheOff,
			TTL:     24 * time.Hour,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "llm-programs:",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Fetch: FetchConfig{
			URL:      DefaultContextURL,
			Timeout:  30 * time.Second,
			MaxBytes: 5 << 20,
		},
		Program: ProgramConfig{
			NumWorkers: 4,
		},
	}
}

// Load reads a configuration file over the defaults. The format is chosen
// by extension: .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path cannot be empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(raw), cfg); err != nil {
			return nil, fmt.Errorf("parse toml config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return cfg, nil
}

// providerKeys are the provider specific variables holding API keys
var providerKeys = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"gemini":     "GEMINI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"deepseek":   "DEEPSEEK_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

// ApplyEnv overrides fields from environment variables. Unparsable numeric
// values are reported and leave the field unchanged.
func (c *Config) ApplyEnv() error {
	var errs []error

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	c.ResolveAPIKey()
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			errs = append(errs, fmt.Errorf("LLM_TIMEOUT: invalid number of seconds %q", v))
		} else {
			c.LLM.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("LLM_CACHE"); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("CONTEXT_URL"); v != "" {
		c.Fetch.URL = v
	}

	return errors.Join(errs...)
}

// ResolveAPIKey fills an empty API key from the variable of the selected
// provider, such as OPENAI_API_KEY. It is applied again after the provider
// changes.
func (c *Config) ResolveAPIKey() {
	if c.LLM.APIKey != "" {
		return
	}
	if name, ok := providerKeys[c.LLM.Provider]; ok {
		c.LLM.APIKey = os.Getenv(name)
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	var errs []error

	if c.LLM.Provider == "" {
		errs = append(errs, errors.New("llm.provider cannot be empty"))
	}
	if c.LLM.Model == "" && c.LLM.Provider != "auto" {
		errs = append(errs, errors.New("llm.model cannot be empty"))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, errors.New("llm.timeout cannot be negative"))
	}

	switch c.Cache.Backend {
	case "", CacheOff, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl cannot be negative"))
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("retry.max_retries cannot be negative"))
	}
	if c.Fetch.Timeout < 0 || c.Fetch.MaxBytes < 0 {
		errs = append(errs, errors.New("fetch.timeout and fetch.max_bytes cannot be negative"))
	}
	if c.Program.MaxTokens < 0 || c.Program.MaxIters < 0 || c.Program.NumWorkers < 0 {
		errs = append(errs, errors.New("program.max_tokens, program.max_iters and program.num_workers cannot be negative"))
	}

	return errors.Join(errs...)
}
