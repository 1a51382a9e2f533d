// Package config loads runtime configuration for the AirPass CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSONC file (see parseJson) selected via flags: -c or -config.
//  3. AIRPASS_* environment variables, plus a .env file when present (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the AirPass API
//	-i int      online status check interval (seconds)
//	-d string   local data directory
//	-r int      request timeout (seconds)
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds. Comments and
// trailing commas are allowed:
//
//	{
//	  // local dev server
//	  "server_url": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "data_dir": "airpass-data",
//	  "db_file": "client.db",
//	  "request_timeout": "10s",
//	  "log_level": "warn",
//	}
package config
