package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/PabloGalante/gemini-suite/internal/observability"
)

type Backend string

const (
	BackendGemini Backend = "gemini"
	BackendVertex Backend = "vertex"
)

const defaultMaxImageBytes int64 = 20 << 20

type Config struct {
	Port string

	Backend      Backend
	APIKey       string
	GCPProjectID string
	GCPLocation  string
	ModelName    string

	UseMockLLM    bool
	MaxImageBytes int64
	LogLevel      string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getInt64Env(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		observability.Logger().Warn("ignoring invalid integer env var", "key", key, "value", v)
		return def
	}
	return n
}

// Load reads the optional .env file, then all env vars, and builds the config.
// Values already present in the environment win over the .env file.
func Load() *Config {
	envFile := getEnv("SUITE_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		observability.Logger().Warn("could not read env file", "path", envFile, "error", err)
	}

	backend := BackendGemini
	if getEnv("SUITE_BACKEND", "gemini") == "vertex" {
		backend = BackendVertex
	}

	cfg := &Config{
		Port: getEnv("SUITE_PORT", "8080"),

		Backend:      backend,
		APIKey:       getEnv("API_KEY", os.Getenv("GEMINI_API_KEY")),
		GCPProjectID: getEnv("SUITE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("SUITE_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("SUITE_MODEL_NAME", "gemini-2.5-flash"),

		UseMockLLM:    getBoolEnv("SUITE_USE_MOCK_LLM", false),
		MaxImageBytes: getInt64Env("SUITE_MAX_IMAGE_BYTES", defaultMaxImageBytes),
		LogLevel:      getEnv("SUITE_LOG_LEVEL", "info"),
	}

	// A missing key is not fatal: requests go out and fail at the remote boundary.
	if cfg.Backend == BackendGemini && cfg.APIKey == "" && !cfg.UseMockLLM {
		observability.Logger().Warn("API_KEY is missing; requests to the model will fail until it is set")
	}

	return cfg
}
