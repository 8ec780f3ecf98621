package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source kinds accepted by DATASET_SOURCE.
const (
	SourceFile      = "file"
	SourceStorage   = "storage"
	SourceFirestore = "firestore"
)

const (
	defaultPort           = 3000
	defaultDatasetPath    = "public/prof_grades.xlsx"
	defaultCollection     = "grade_records"
	defaultPublicDir      = "public"
	defaultAllowedOrigin  = "*"
	defaultRateWindow     = 60 * time.Second
	defaultSuggestTTL     = 10 * time.Minute
	defaultLogLevel       = "info"
	defaultShutdownPeriod = 5 * time.Second
)

// Config is the runtime configuration of the API server.
type Config struct {
	Port int

	// Dataset source
	Source          string
	DatasetPath     string
	Bucket          string
	Collection      string
	FirebaseConfig  string
	FailOnLoadError bool

	// HTTP surface
	PublicDir     string
	AllowedOrigin string
	RateLimit     int
	RateWindow    time.Duration
	SuggestTTL    time.Duration

	LogLevel       string
	ShutdownPeriod time.Duration
}

// Load reads the configuration from the environment. Unset variables take
// their defaults; malformed values are reported as errors.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            defaultPort,
		Source:          SourceFile,
		DatasetPath:     defaultDatasetPath,
		Collection:      defaultCollection,
		FailOnLoadError: true,
		PublicDir:       defaultPublicDir,
		AllowedOrigin:   defaultAllowedOrigin,
		RateWindow:      defaultRateWindow,
		SuggestTTL:      defaultSuggestTTL,
		LogLevel:        defaultLogLevel,
		ShutdownPeriod:  defaultShutdownPeriod,
	}

	var err error
	if cfg.Port, err = intEnv("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d", cfg.Port)
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("DATASET_SOURCE"))); v != "" {
		switch v {
		case SourceFile, SourceStorage, SourceFirestore:
			cfg.Source = v
		default:
			return nil, fmt.Errorf("invalid DATASET_SOURCE: %s (must be 'file', 'storage', or 'firestore')", v)
		}
	}

	cfg.DatasetPath = stringEnv("DATASET_PATH", cfg.DatasetPath)
	cfg.Bucket = stringEnv("DATASET_BUCKET", cfg.Bucket)
	cfg.Collection = stringEnv("DATASET_COLLECTION", cfg.Collection)
	cfg.FirebaseConfig = stringEnv("FIREBASE_CONFIG", cfg.FirebaseConfig)
	cfg.PublicDir = stringEnv("PUBLIC_DIR", cfg.PublicDir)
	cfg.AllowedOrigin = stringEnv("ALLOWED_ORIGIN", cfg.AllowedOrigin)
	cfg.LogLevel = stringEnv("LOG_LEVEL", cfg.LogLevel)

	if cfg.FailOnLoadError, err = boolEnv("FAIL_ON_LOAD_ERROR", cfg.FailOnLoadError); err != nil {
		return nil, err
	}

	if cfg.RateLimit, err = intEnv("RATE_LIMIT", cfg.RateLimit); err != nil {
		return nil, err
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %d (must be 0 or greater)", cfg.RateLimit)
	}

	windowSeconds, err := intEnv("RATE_WINDOW_SECONDS", int(cfg.RateWindow/time.Second))
	if err != nil {
		return nil, err
	}
	if windowSeconds <= 0 {
		return nil, fmt.Errorf("invalid RATE_WINDOW_SECONDS: %d (must be greater than 0)", windowSeconds)
	}
	cfg.RateWindow = time.Duration(windowSeconds) * time.Second

	if v := strings.TrimSpace(os.Getenv("SUGGEST_CACHE_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SUGGEST_CACHE_TTL: %w", err)
		}
		cfg.SuggestTTL = ttl
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Source {
	case SourceFile:
		if c.DatasetPath == "" {
			return fmt.Errorf("DATASET_PATH is required for the file source")
		}
	case SourceStorage:
		if c.Bucket == "" || c.DatasetPath == "" {
			return fmt.Errorf("DATASET_BUCKET and DATASET_PATH are required for the storage source")
		}
	case SourceFirestore:
		if c.Collection == "" {
			return fmt.Errorf("DATASET_COLLECTION is required for the firestore source")
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, v)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return fallback, nil
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s: %s (must be 'true' or 'false')", key, v)
	}
}
