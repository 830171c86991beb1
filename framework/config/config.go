package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Inspector InspectorConfig
}

type AppConfig struct {
	Name string
	Env  string // local | production | testing
	// LogVerbosity is the highest logr V-level printed.
	LogVerbosity int
}

type ContainerConfig struct {
	// Autoload lets Add and Bind run catalog loaders for unknown types.
	Autoload bool
	// Manifest is an optional YAML file with parameter metadata and bindings.
	Manifest string
}

type InspectorConfig struct {
	Enabled bool
	Addr    string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:         env("APP_NAME", "go-autowire"),
			Env:          env("APP_ENV", "local"),
			LogVerbosity: GetInt("LOG_VERBOSITY", 0),
		},
		Container: ContainerConfig{
			Autoload: envBool("CONTAINER_AUTOLOAD", true),
			Manifest: env("CONTAINER_MANIFEST", ""),
		},
		Inspector: InspectorConfig{
			Enabled: envBool("INSPECTOR_ENABLED", false),
			Addr:    env("INSPECTOR_ADDR", ":8000"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
