package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// FileEnv names an optional YAML file loaded before the environment.
const FileEnv = "STAYREPORT_CONFIG"

type Config struct {
	Port              string        `yaml:"port" envconfig:"PORT"`
	LogLevel          string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat         string        `yaml:"log_format" envconfig:"LOG_FORMAT"`
	HTTPTimeout       time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT"`
	FetchRetries      int           `yaml:"fetch_retries" envconfig:"FETCH_RETRIES"`
	FetchBackoff      time.Duration `yaml:"fetch_backoff" envconfig:"FETCH_BACKOFF"`
	FetchAllowPrivate bool          `yaml:"fetch_allow_private" envconfig:"FETCH_ALLOW_PRIVATE"`
	MaxUploadMB       int64         `yaml:"max_upload_mb" envconfig:"MAX_UPLOAD_MB"`
	InputEncoding     string        `yaml:"input_encoding" envconfig:"INPUT_ENCODING"`
	HeaderLang        string        `yaml:"header_lang" envconfig:"HEADER_LANG"`
	MissingSide       string        `yaml:"missing_side" envconfig:"MISSING_SIDE"`
	// RateLimitRPS caps report requests per second; 0 disables the limit.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

func Default() Config {
	return Config{
		Port:              "8080",
		LogLevel:          "info",
		LogFormat:         "json",
		HTTPTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		FetchRetries:      3,
		FetchBackoff:      100 * time.Millisecond,
		MaxUploadMB:       32,
		InputEncoding:     "auto",
		HeaderLang:        "en",
		MissingSide:       "zero",
		RateLimitRPS:      10,
		RateLimitBurst:    20,
	}
}

// Load applies, in order: defaults, a local .env file, the YAML file named
// by STAYREPORT_CONFIG, and environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if !oneOf(c.LogFormat, "json", "text") {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be json or text", c.LogFormat))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, "http timeout must be positive")
	}
	if c.FetchRetries < 0 || c.FetchRetries > 10 {
		errs = append(errs, fmt.Sprintf("invalid fetch retries %d: must be between 0 and 10", c.FetchRetries))
	}
	if c.FetchBackoff < 0 {
		errs = append(errs, "fetch backoff cannot be negative")
	}
	if c.MaxUploadMB < 1 || c.MaxUploadMB > 1024 {
		errs = append(errs, fmt.Sprintf("invalid max upload %dMB: must be between 1 and 1024", c.MaxUploadMB))
	}
	if !oneOf(strings.ToLower(c.InputEncoding), "auto", "utf-8", "utf8", "shift_jis", "shift-jis", "sjis", "cp932") {
		errs = append(errs, fmt.Sprintf("invalid input encoding '%s'", c.InputEncoding))
	}
	if !oneOf(c.HeaderLang, "en", "ja") {
		errs = append(errs, fmt.Sprintf("invalid header lang '%s': must be en or ja", c.HeaderLang))
	}
	if !oneOf(c.MissingSide, "zero", "undefined") {
		errs = append(errs, fmt.Sprintf("invalid missing side policy '%s': must be zero or undefined", c.MissingSide))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, "rate limit cannot be negative")
	} else if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

func oneOf(v string, opts ...string) bool {
	for _, o := range opts {
		if v == o {
			return true
		}
	}
	return false
}
