package app

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hubrr/internal/directory"
)

// Key store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string        // key directory, e.g. $HOME/.hubrr
	APIBase     string        // directory base URL, e.g. https://api.hubrr.com/api
	Token       string        // bearer token for the directory and relay
	Store       string        // file | sqlite | memory
	Passphrase  string        // optional; seals the file store at rest
	WSURL       string        // relay websocket URL; derived from APIBase when empty
	HTTPTimeout time.Duration // per-request timeout for directory calls
	Verbose     bool
}

// LoadConfig fills Config from the environment (after loading .env if
// present). Flags set by the caller afterwards take precedence.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Home:        getEnv("HUBRR_HOME"),
		APIBase:     getEnv("HUBRR_API_BASE"),
		Token:       getEnv("HUBRR_TOKEN"),
		Store:       getEnv("HUBRR_STORE"),
		Passphrase:  os.Getenv("HUBRR_PASSPHRASE"),
		WSURL:       getEnv("HUBRR_WS_URL"),
		HTTPTimeout: 15 * time.Second,
	}
	if cfg.APIBase == "" {
		cfg.APIBase = getEnv("EXPO_PUBLIC_API_BASE")
	}
	if v := getEnv("HUBRR_HTTP_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("HUBRR_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

// Normalize applies defaults and validates the result.
func (c *Config) Normalize() error {
	if c.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.Home = filepath.Join(dir, ".hubrr")
	}
	c.APIBase = directory.NormalizeBase(c.APIBase)
	if c.Store == "" {
		c.Store = StoreFile
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want file, sqlite or memory)", c.Store)
	}
	if c.WSURL == "" {
		ws, err := RelayURL(c.APIBase)
		if err != nil {
			return err
		}
		c.WSURL = ws
	}
	return nil
}

// RelayURL derives the websocket relay endpoint from the directory base.
func RelayURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("api base: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("api base %q: unsupported scheme", apiBase)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

func getEnv(key string) string { return strings.TrimSpace(os.Getenv(key)) }
