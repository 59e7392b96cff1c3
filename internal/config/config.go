// Package config handles server configuration from defaults and environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Store backend names accepted by the -store flag / KOSYNC_STORE.
const (
	StoreFS     = "fs"
	StoreBadger = "badger"
)

// Config holds runtime settings for the sync server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DataDir: root directory for all persisted state.
//   - Store: storage backend, StoreFS or StoreBadger.
//   - DisableRegistration: reject all registration requests. Read once at
//     startup; flipping it requires a restart.
//   - LoginFailureLimit: failed logins per (user, ip) before a temporary
//     lockout. Zero disables rate limiting.
type Config struct {
	Addr                string
	DataDir             string
	Store               string
	DisableRegistration bool
	LoginFailureLimit   int
}

// Load builds a Config from defaults overlaid with KOSYNC_* environment
// variables. Command-line flags are applied on top by the CLI.
func Load() *Config {
	cfg := &Config{
		Addr:    ":8437",
		DataDir: defaultDataDir(),
		Store:   StoreFS,
	}
	if v := os.Getenv("KOSYNC_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("KOSYNC_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KOSYNC_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("KOSYNC_DISABLE_REGISTRATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DisableRegistration = b
		}
	}
	if v := os.Getenv("KOSYNC_LOGIN_FAILURE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.LoginFailureLimit = n
		}
	}
	return cfg
}

// defaultDataDir resolves the platform data directory the way the reference
// server does: $XDG_DATA_HOME/kosyncd, falling back to ~/.local/share/kosyncd.
func defaultDataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "kosyncd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "kosyncd-data"
	}
	return filepath.Join(home, ".local", "share", "kosyncd")
}
