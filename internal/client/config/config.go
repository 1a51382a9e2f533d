package config

import "time"

// Config holds runtime settings for the AirPass CLI.
//
// Fields:
//   - ServerURL: base URL of the AirPass HTTP API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DataDir: directory (relative to the working directory) holding local state.
//   - DBFile: SQLite file name inside DataDir.
//   - RequestTimeout: upper bound for a single API request.
//   - LogLevel: debug, info, warn or error. Logs go to stderr.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	DataDir             string
	DBFile              string
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.DataDir = "airpass-data"
	c.DBFile = "client.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSONC file, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg, ".env")
	parseFlags(cfg)
	return cfg
}
