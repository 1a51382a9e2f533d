package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays AIRPASS_* client variables. A .env file, when present,
// is loaded first and never overrides the real environment.
func parseEnv(cfg *Config, envFile string) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	if v := os.Getenv("AIRPASS_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("AIRPASS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("AIRPASS_CLIENT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	envDuration("AIRPASS_ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	envDuration("AIRPASS_REQUEST_TIMEOUT", &cfg.RequestTimeout)
}

func envDuration(name string, dst *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}
