package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the interview service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	OracleProvider   string
	OracleAPIKey     string
	OracleBaseURL    string
	OracleModel      string
	OracleTimeout    time.Duration
	OracleMaxRetries int

	DataDir          string
	DatabaseURL      string
	QuestionBankPath string

	MaxQuestions        int
	MinQuestionsToClose int
	DifficultyThreshold float64
	PassCutoff          float64
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "sheetcheck"),
		AllowAnyOrigin:   false,
		OracleProvider:   envOrDefault("ORACLE_PROVIDER", "auto"),
		OracleAPIKey:     envTrimmed("ORACLE_API_KEY"),
		// Default to an OpenAI-compatible endpoint; Groq works by overriding
		// the base URL to https://api.groq.com/openai/v1.
		OracleBaseURL:       envOrDefault("ORACLE_BASE_URL", "https://api.openai.com/v1"),
		OracleModel:         envOrDefault("ORACLE_MODEL", "gpt-4o-mini"),
		OracleTimeout:       30 * time.Second,
		OracleMaxRetries:    3,
		DataDir:             envOrDefault("APP_DATA_DIR", "data"),
		DatabaseURL:         envTrimmed("DATABASE_URL"),
		QuestionBankPath:    envTrimmed("APP_QUESTION_BANK"),
		MaxQuestions:        8,
		MinQuestionsToClose: 5,
		DifficultyThreshold: 70,
		PassCutoff:          70,
		ShutdownTimeout:     15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OracleTimeout, err = durationFromEnv("ORACLE_TIMEOUT", cfg.OracleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OracleMaxRetries, err = intFromEnv("ORACLE_MAX_RETRIES", cfg.OracleMaxRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxQuestions, err = intFromEnv("APP_MAX_QUESTIONS", cfg.MaxQuestions)
	if err != nil {
		return Config{}, err
	}
	cfg.MinQuestionsToClose, err = intFromEnv("APP_MIN_QUESTIONS_TO_CLOSE", cfg.MinQuestionsToClose)
	if err != nil {
		return Config{}, err
	}
	cfg.DifficultyThreshold, err = floatFromEnv("APP_DIFFICULTY_THRESHOLD", cfg.DifficultyThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.PassCutoff, err = floatFromEnv("APP_PASS_CUTOFF", cfg.PassCutoff)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.OracleTimeout < time.Second {
		return Config{}, fmt.Errorf("ORACLE_TIMEOUT must be at least 1s")
	}
	if cfg.OracleMaxRetries <= 0 {
		return Config{}, fmt.Errorf("ORACLE_MAX_RETRIES must be positive")
	}
	if cfg.MaxQuestions <= 0 {
		return Config{}, fmt.Errorf("APP_MAX_QUESTIONS must be positive")
	}
	if cfg.MinQuestionsToClose <= 0 || cfg.MinQuestionsToClose > cfg.MaxQuestions {
		return Config{}, fmt.Errorf("APP_MIN_QUESTIONS_TO_CLOSE must be in [1, APP_MAX_QUESTIONS]")
	}
	if cfg.DifficultyThreshold < 0 || cfg.DifficultyThreshold > 100 {
		return Config{}, fmt.Errorf("APP_DIFFICULTY_THRESHOLD must be in [0,100]")
	}
	if cfg.PassCutoff < 0 || cfg.PassCutoff > 100 {
		return Config{}, fmt.Errorf("APP_PASS_CUTOFF must be in [0,100]")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return Config{}, fmt.Errorf("APP_DATA_DIR must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
