package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hubrr/internal/registry"
	"hubrr/pkg/logger"
)

// Registry backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the directory server settings.
type Config struct {
	Addr        string
	Mode        string
	Backend     string
	Redis       registry.RedisConfig
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		Mode:           logger.DevelopmentMode,
		Backend:        BackendMemory,
		Redis:          registry.RedisConfig{Addr: "localhost:6379"},
		TokenTTL:       24 * time.Hour,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	}
}

// fileConfig is the optional YAML file layout.
type fileConfig struct {
	Addr        string              `yaml:"addr"`
	Mode        string              `yaml:"mode"`
	Backend     string              `yaml:"backend"`
	Redis       redisFileConfig     `yaml:"redis"`
	DatabaseURL string              `yaml:"databaseURL"`
	JWTSecret   string              `yaml:"jwtSecret"`
	TokenTTL    time.Duration       `yaml:"tokenTTL"`
	RateLimit   rateLimitFileConfig `yaml:"rateLimit"`
}

type redisFileConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
}

type rateLimitFileConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LoadConfig layers defaults, the YAML file at path (optional), a .env file
// in the working directory (optional) and the process environment, in that
// order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		merge(&cfg, parsed)
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func merge(dst *Config, src fileConfig) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if src.Backend != "" {
		dst.Backend = src.Backend
	}
	if src.Redis.Addr != "" {
		dst.Redis.Addr = src.Redis.Addr
	}
	if src.Redis.Password != "" {
		dst.Redis.Password = src.Redis.Password
	}
	if src.Redis.DB != nil {
		dst.Redis.DB = *src.Redis.DB
	}
	if src.DatabaseURL != "" {
		dst.DatabaseURL = src.DatabaseURL
	}
	if src.JWTSecret != "" {
		dst.JWTSecret = src.JWTSecret
	}
	if src.TokenTTL != 0 {
		dst.TokenTTL = src.TokenTTL
	}
	if src.RateLimit.RPS != 0 {
		dst.RateLimitRPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst != 0 {
		dst.RateLimitBurst = src.RateLimit.Burst
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Addr, "DIRECTORY_ADDR")
	setString(&cfg.Mode, "DIRECTORY_MODE")
	setString(&cfg.Backend, "DIRECTORY_BACKEND")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")

	if v := getEnv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if v := getEnv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v := getEnv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}
	return nil
}

// Validate checks backend-specific requirements.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("backend %q needs DATABASE_URL", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// AuthEnabled reports whether bearer tokens are required.
func (c Config) AuthEnabled() bool { return c.JWTSecret != "" }

func getEnv(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}
