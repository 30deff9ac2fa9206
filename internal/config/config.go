package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/park285/cheese-chess-client/internal/wsconn"
)

type AppConfig struct {
	WSBaseURL  string
	APIBaseURL string

	Token    string
	Username string
	Password string

	ReconnectAttempts int
	ReconnectDelay    time.Duration
	PingInterval      time.Duration
	DialTimeout       time.Duration

	MessagesDir string

	RedisURL    string
	DatabaseURL string
}

// Load reads the environment. Files are loaded first with godotenv and never
// override variables that are already set; with no files, an optional ./.env is tried.
func Load(envFiles ...string) (*AppConfig, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	cfg := &AppConfig{
		WSBaseURL:         "ws://localhost:8080",
		APIBaseURL:        "http://localhost:8080",
		ReconnectAttempts: 3,
		ReconnectDelay:    500 * time.Millisecond,
		PingInterval:      30 * time.Second,
		DialTimeout:       10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_WS_BASE_URL")); v != "" {
		cfg.WSBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_API_BASE_URL")); v != "" {
		cfg.APIBaseURL = v
	}

	cfg.Token = strings.TrimSpace(os.Getenv("CHESS_TOKEN"))
	cfg.Username = strings.TrimSpace(os.Getenv("CHESS_USERNAME"))
	cfg.Password = os.Getenv("CHESS_PASSWORD")

	if v := strings.TrimSpace(os.Getenv("CHESS_RECONNECT_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ReconnectAttempts = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_RECONNECT_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReconnectDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_PING_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PingInterval = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_DIAL_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DialTimeout = time.Duration(n) * time.Second
		}
	}

	cfg.MessagesDir = strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what can be checked without a network. A token may still be
// obtained later through the login API, so it is only required when no
// credentials are configured either.
func (c *AppConfig) Validate() error {
	if _, err := wsconn.ResolveTarget(c.WSBaseURL, "probe"); err != nil {
		return errors.New("CHESS_WS_BASE_URL must be a ws, wss, http or https URL")
	}
	if c.Token == "" && (c.Username == "" || c.Password == "") {
		return errors.New("CHESS_TOKEN or CHESS_USERNAME and CHESS_PASSWORD are required")
	}
	return nil
}

// NeedsLogin reports whether the token must come from the login API.
func (c *AppConfig) NeedsLogin() bool { return c.Token == "" }

// Conn returns the websocket settings for a session.
func (c *AppConfig) Conn() wsconn.Config {
	return wsconn.Config{
		BaseURL:           c.WSBaseURL,
		ReconnectAttempts: c.ReconnectAttempts,
		ReconnectDelay:    c.ReconnectDelay,
		PingInterval:      c.PingInterval,
		DialTimeout:       c.DialTimeout,
	}
}
