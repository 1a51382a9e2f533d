package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays AIRPASS_* environment variables. Variables from envFile
// are loaded first when the file exists; they never override the real
// environment. Malformed numeric values panic, like a malformed config file.
func parseEnv(config *Config, envFile string) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	lookupString("AIRPASS_HTTP_ADDR", &config.EndpointAddrHTTP)
	lookupString("AIRPASS_DATABASE_DSN", &config.DatabaseDSN)
	lookupString("AIRPASS_SECRET_KEY", &config.SecretKey)
	lookupString("AIRPASS_LOG_LEVEL", &config.LogLevel)
	lookupString("AIRPASS_S3_ROOT_USER", &config.S3RootUser)
	lookupString("AIRPASS_S3_ROOT_PASSWORD", &config.S3RootPassword)
	lookupString("AIRPASS_S3_BUCKET", &config.S3Bucket)
	lookupString("AIRPASS_S3_REGION", &config.S3Region)
	lookupString("AIRPASS_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	lookupDuration("AIRPASS_SESSION_TTL", &config.SessionTTL)
	lookupDuration("AIRPASS_SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	lookupDuration("AIRPASS_EXPORT_URL_TTL", &config.ExportURLTTL)

	if v, ok := os.LookupEnv("AIRPASS_AUTH_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("AIRPASS_AUTH_RATE_LIMIT: %w", err))
		}
		config.AuthRateLimit = f
	}
	if v, ok := os.LookupEnv("AIRPASS_AUTH_RATE_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("AIRPASS_AUTH_RATE_BURST: %w", err))
		}
		config.AuthRateBurst = n
	}
}

func lookupString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}
