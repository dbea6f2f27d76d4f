package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tandem/internal/categorize"
	"tandem/internal/pantry"
	"tandem/internal/storage"
)

// Config is everything the binaries read at start. Connection settings and
// secrets come from the environment; engine tunables may also come from the
// YAML file named by PANTRY_CONFIG.
type Config struct {
	AppEnv      string
	HTTPAddr    string
	LogLevel    string
	CORSOrigins []string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string

	LLM LLMConfig
	R2  storage.R2Config

	Engine EngineConfig
}

// LLMConfig selects the categorizer backend.
type LLMConfig struct {
	Provider    string
	GeminiKey   string
	GeminiModel string
	LLaMAKey    string
	LLaMAModel  string
	LLaMAURL    string
}

// EngineConfig holds the tunables of the pantry and categorizer engine.
type EngineConfig struct {
	DefaultExpiryDays    int           `yaml:"default_expiry_days"`
	FallbackCategory     string        `yaml:"fallback_category"`
	FallbackLocation     string        `yaml:"fallback_location"`
	IdempotencyWindow    time.Duration `yaml:"idempotency_window"`
	CategorizerTimeout   time.Duration `yaml:"categorizer_timeout"`
	CategorizerCacheSize int           `yaml:"categorizer_cache_size"`
	WorkerInterval       time.Duration `yaml:"worker_interval"`
	WorkerBatch          int           `yaml:"worker_batch"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ProviderGemini = "gemini"
	ProviderLLaMA  = "llama"
	ProviderNone   = "none"
)

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultExpiryDays:    7,
		FallbackCategory:     categorize.Fallback.Category,
		FallbackLocation:     categorize.Fallback.Location,
		IdempotencyWindow:    24 * time.Hour,
		CategorizerTimeout:   10 * time.Second,
		CategorizerCacheSize: 512,
		WorkerInterval:       30 * time.Second,
		WorkerBatch:          20,
	}
}

// Load reads .env outside production, then the environment, then the
// optional YAML overlay.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := FromEnv()

	if path := os.Getenv("PANTRY_CONFIG"); path != "" {
		if err := cfg.Engine.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() *Config {
	cfg := &Config{
		AppEnv:      getenv("APP_ENV", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "tandem.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LLM: LLMConfig{
			Provider:    strings.ToLower(os.Getenv("LLM_PROVIDER")),
			GeminiKey:   os.Getenv("GEMINI_API_KEY"),
			GeminiModel: os.Getenv("GEMINI_MODEL"),
			LLaMAKey:    os.Getenv("LLAMA_API_KEY"),
			LLaMAModel:  os.Getenv("LLAMA_MODEL"),
			LLaMAURL:    os.Getenv("LLAMA_API_URL"),
		},
		R2: storage.R2Config{
			Endpoint:  os.Getenv("R2_ENDPOINT"),
			AccessKey: os.Getenv("R2_ACCESS_KEY"),
			SecretKey: os.Getenv("R2_SECRET_KEY"),
			Bucket:    os.Getenv("R2_BUCKET_NAME"),
		},

		Engine: DefaultEngineConfig(),
	}

	// a Gemini key alone is enough to pick the provider
	if cfg.LLM.Provider == "" {
		switch {
		case cfg.LLM.GeminiKey != "":
			cfg.LLM.Provider = ProviderGemini
		case cfg.LLM.LLaMAKey != "":
			cfg.LLM.Provider = ProviderLLaMA
		default:
			cfg.LLM.Provider = ProviderNone
		}
	}
	return cfg
}

// LoadFile overlays the YAML file at path. Keys missing from the file keep
// their current values.
func (e *EngineConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, e); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing env var: JWT_SECRET"))
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("missing env var: DATABASE_URL"))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiKey == "" {
			errs = append(errs, errors.New("missing env var: GEMINI_API_KEY"))
		}
	case ProviderLLaMA:
		if c.LLM.LLaMAKey == "" {
			errs = append(errs, errors.New("missing env var: LLAMA_API_KEY"))
		}
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}

	if c.R2.Bucket != "" && (c.R2.Endpoint == "" || c.R2.AccessKey == "" || c.R2.SecretKey == "") {
		errs = append(errs, errors.New("R2_BUCKET_NAME set without R2_ENDPOINT, R2_ACCESS_KEY and R2_SECRET_KEY"))
	}

	if err := c.Engine.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e EngineConfig) validate() error {
	var errs []error
	if e.DefaultExpiryDays <= 0 {
		errs = append(errs, errors.New("default_expiry_days must be positive"))
	}
	if e.IdempotencyWindow <= 0 {
		errs = append(errs, errors.New("idempotency_window must be positive"))
	}
	if e.CategorizerTimeout <= 0 {
		errs = append(errs, errors.New("categorizer_timeout must be positive"))
	}
	if e.CategorizerCacheSize <= 0 {
		errs = append(errs, errors.New("categorizer_cache_size must be positive"))
	}
	if e.WorkerInterval <= 0 || e.WorkerBatch <= 0 {
		errs = append(errs, errors.New("worker_interval and worker_batch must be positive"))
	}
	return errors.Join(errs...)
}

// Fallback is the placement used when the categorizer cannot answer.
func (e EngineConfig) Fallback() categorize.Placement {
	return categorize.Placement{Category: e.FallbackCategory, Location: e.FallbackLocation}
}

func (e EngineConfig) Fulfillment() pantry.FulfillmentConfig {
	return pantry.FulfillmentConfig{
		DefaultExpiryDays: e.DefaultExpiryDays,
		Fallback:          e.Fallback(),
		IdempotencyWindow: e.IdempotencyWindow,
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
