package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: FANTASY_UPSTREAM__TIMEOUT=5s sets upstream.timeout.
const EnvPrefix = "FANTASY_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Relay     RelayConfig     `koanf:"relay"`
	Cache     CacheConfig     `koanf:"cache"`
	Redis     RedisConfig     `koanf:"redis"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	SetPieces SetPiecesConfig `koanf:"setpieces"`
	// DevMode surfaces truncated upstream bodies in error responses.
	DevMode  bool   `koanf:"dev_mode"`
	LogLevel string `koanf:"log_level"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"` // empty echoes any origin
}

type UpstreamConfig struct {
	LoginURL     string        `koanf:"login_url"`
	APIBaseURL   string        `koanf:"api_base_url"`
	CrestBaseURL string        `koanf:"crest_base_url"`
	UserAgent    string        `koanf:"user_agent"`
	Timeout      time.Duration `koanf:"timeout"`
	// BlockPrivateAddresses refuses upstream connections to loopback and private ranges.
	BlockPrivateAddresses bool `koanf:"block_private_addresses"`
}

type RelayConfig struct {
	MaxRedirects int      `koanf:"max_redirects"`
	AuthMarkers  []string `koanf:"auth_markers"`
	BotMarkers   []string `koanf:"bot_markers"`
}

type CacheConfig struct {
	BootstrapTTL time.Duration `koanf:"bootstrap_ttl"`
	FixturesTTL  time.Duration `koanf:"fixtures_ttl"`
	CrestTTL     time.Duration `koanf:"crest_ttl"`
	CrestSize    int           `koanf:"crest_size"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Username string `koanf:"username"`
	Password string `koanf:"password"` // supports ${VAR}
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

type SetPiecesConfig struct {
	// Path is a JSON table written by the setpieces command. Empty disables the route.
	Path string `koanf:"path"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

var defaults = map[string]any{
	"server.port":             8080,
	"server.request_timeout":  30 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,
	"upstream.login_url":      "https://users.premierleague.com/accounts/login/",
	"upstream.api_base_url":   "https://fantasy.premierleague.com",
	"upstream.crest_base_url": "https://resources.premierleague.com/premierleague/badges/70",
	"upstream.timeout":        10 * time.Second,
	"relay.max_redirects":     5,
	"cache.bootstrap_ttl":     6 * time.Hour,
	"cache.fixtures_ttl":      30 * time.Minute,
	"cache.crest_ttl":         24 * time.Hour,
	"cache.crest_size":        64,
	"redis.prefix":            "fantasy-relay:refdata:",
	"telemetry.service_name":  "fantasy-relay",
	"log_level":               "info",
}

// Load reads configuration from path (optional; a missing file is fine), then
// environment variables, then fills defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// File not found is OK, we'll use env vars
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Redis.Password = substituteEnvVars(cfg.Redis.Password)
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Relay.AuthMarkers = splitList(cfg.Relay.AuthMarkers)
	cfg.Relay.BotMarkers = splitList(cfg.Relay.BotMarkers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must be positive"))
	}
	if c.Relay.MaxRedirects < 0 {
		errs = append(errs, fmt.Errorf("relay.max_redirects must not be negative"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr required when redis is enabled"))
	}
	return errors.Join(errs...)
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// splitList expands comma-separated entries, which is how lists arrive from
// environment variables.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
