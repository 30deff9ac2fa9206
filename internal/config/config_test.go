package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHESS_WS_BASE_URL", "CHESS_API_BASE_URL", "CHESS_TOKEN", "CHESS_USERNAME", "CHESS_PASSWORD",
		"CHESS_RECONNECT_ATTEMPTS", "CHESS_RECONNECT_DELAY_MS", "CHESS_PING_INTERVAL_SEC",
		"CHESS_DIAL_TIMEOUT_SEC", "CHESS_MESSAGES_DIR", "REDIS_URL", "DATABASE_URL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHESS_TOKEN", " tk ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "tk" || cfg.WSBaseURL != "ws://localhost:8080" || cfg.ReconnectAttempts != 3 {
		t.Fatalf("cfg = %+v", cfg)
	}
	conn := cfg.Conn()
	if conn.ReconnectDelay != 500*time.Millisecond || conn.PingInterval != 30*time.Second {
		t.Fatalf("conn = %+v", conn)
	}
	if cfg.NeedsLogin() {
		t.Fatalf("token configured but login needed")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHESS_USERNAME", "alice")
	t.Setenv("CHESS_PASSWORD", "pw")
	t.Setenv("CHESS_WS_BASE_URL", "https://chess.example")
	t.Setenv("CHESS_RECONNECT_ATTEMPTS", "0")
	t.Setenv("CHESS_RECONNECT_DELAY_MS", "250")
	t.Setenv("CHESS_DIAL_TIMEOUT_SEC", "bogus")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReconnectAttempts != 0 || cfg.ReconnectDelay != 250*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DialTimeout != 10*time.Second {
		t.Fatalf("invalid value not ignored: %v", cfg.DialTimeout)
	}
	if !cfg.NeedsLogin() {
		t.Fatalf("credentials only, login expected")
	}
}

func TestLoadRejects(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("missing token accepted")
	}
	t.Setenv("CHESS_TOKEN", "tk")
	t.Setenv("CHESS_WS_BASE_URL", "ftp://host")
	if _, err := Load(); err == nil {
		t.Fatalf("bad scheme accepted")
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "client.env")
	if err := os.WriteFile(path, []byte("CHESS_TOKEN=from-file\nREDIS_URL=redis://localhost:6379/1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("REDIS_URL", "redis://env:6379/0")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "from-file" || cfg.RedisURL != "redis://env:6379/0" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
