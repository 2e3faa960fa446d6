// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is everything the server needs at startup.
type Config struct {
	ListenAddr    string        // LISTEN_ADDR
	DBPath        string        // DB_PATH, empty means in-memory
	ResetDB       bool          // RESET_DB_ON_STARTUP
	TokenSecret   string        // TOKEN_SECRET
	TokenTTL      time.Duration // TOKEN_TTL
	AzulModelPath string        // AZUL_MODEL_PATH
	EventBuffer   int           // EVENT_BUFFER, per-subscriber channel depth
}

// FromEnv builds the configuration with defaults for everything unset.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:    envStr("LISTEN_ADDR", ":8080"),
		DBPath:        envStr("DB_PATH", "data/db"),
		TokenSecret:   envStr("TOKEN_SECRET", ""),
		AzulModelPath: envStr("AZUL_MODEL_PATH", ""),
	}

	var err error
	if cfg.ResetDB, err = envBool("RESET_DB_ON_STARTUP", false); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.EventBuffer, err = envInt("EVENT_BUFFER", 64); err != nil {
		return nil, err
	}
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("config: TOKEN_SECRET must be set")
	}
	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean", key, v)
	}
	return b, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration", key, v)
	}
	return d, nil
}
