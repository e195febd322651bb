package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; every value has a default so the server can run
// with no configuration at all, matching how the original deployment worked.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DataDir        string        // root directory for workspaces and records
	LegacyFile     string        // path of the pre-monthly single-file store
	JiraConfigFile string        // path of the shared global Jira config
	SessionBackend string        // "file" or "redis"
	JiraTimeout    time.Duration // upper bound on a Jira fetch
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. Missing variables fall back to defaults.
func Load() Config {
	_ = godotenv.Load() // best effort; absence of .env is fine

	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("PORT", "5000"),
		DataDir:        getenv("DATA_DIR", "data"),
		LegacyFile:     getenv("LEGACY_FILE", "tickets-data.json"),
		JiraConfigFile: getenv("JIRA_CONFIG_FILE", "jira_config.json"),
		SessionBackend: getenv("SESSION_BACKEND", "file"),
		JiraTimeout:    time.Duration(getenvInt("JIRA_TIMEOUT_SEC", 10)) * time.Second,
	}
}

// getenv retrieves an environment variable, returning a fallback when the
// variable is unset or empty.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvInt is like getenv but converts the value to an integer, keeping the
// fallback on conversion failure.
func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
