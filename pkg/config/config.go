package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	DeepSeek DeepSeekConfig
	Search   SearchConfig
	Keasy    KeasyConfig
	Env      string
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether KB store credentials are present. An empty host
// disables KB search entirely (logged as a warning at startup, not fatal).
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SearchConfig struct {
	APIKey  string
	BaseURL string
}

// KeasyConfig holds the pipeline tunables. Callers may override individual
// fields per request; Merge produces the effective value.
type KeasyConfig struct {
	KbMinScore         float64
	KbMinResults       int
	MaxKbChunks        int
	MaxWebResults      int
	MaxWebSnippetChars int
	WebFetchTimeout    time.Duration
	MaxQueryLength     int
	WebFallbackEnabled bool
}

// KeasyOverrides carries optional per-request overrides of KeasyConfig.
type KeasyOverrides struct {
	KbMinScore         *float64
	KbMinResults       *int
	MaxKbChunks        *int
	MaxWebResults      *int
	MaxWebSnippetChars *int
	WebFetchTimeout    *time.Duration
	MaxQueryLength     *int
}

// Merge returns a copy of c with any non-nil override applied. The receiver
// is never mutated.
func (c KeasyConfig) Merge(o *KeasyOverrides) KeasyConfig {
	if o == nil {
		return c
	}
	out := c
	if o.KbMinScore != nil {
		out.KbMinScore = *o.KbMinScore
	}
	if o.KbMinResults != nil {
		out.KbMinResults = *o.KbMinResults
	}
	if o.MaxKbChunks != nil {
		out.MaxKbChunks = *o.MaxKbChunks
	}
	if o.MaxWebResults != nil {
		out.MaxWebResults = *o.MaxWebResults
	}
	if o.MaxWebSnippetChars != nil {
		out.MaxWebSnippetChars = *o.MaxWebSnippetChars
	}
	if o.WebFetchTimeout != nil {
		out.WebFetchTimeout = *o.WebFetchTimeout
	}
	if o.MaxQueryLength != nil {
		out.MaxQueryLength = *o.MaxQueryLength
	}
	return out
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables may be set directly
	// (Docker/K8s deployments).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))

	kbMinScore, _ := strconv.ParseFloat(getEnv("KEASY_KB_MIN_SCORE", "0.5"), 64)
	kbMinResults, _ := strconv.Atoi(getEnv("KEASY_KB_MIN_RESULTS", "1"))
	maxKbChunks, _ := strconv.Atoi(getEnv("KEASY_MAX_KB_CHUNKS", "5"))
	maxWebResults, _ := strconv.Atoi(getEnv("KEASY_MAX_WEB_RESULTS", "3"))
	maxSnippet, _ := strconv.Atoi(getEnv("KEASY_MAX_WEB_SNIPPET_CHARS", "1200"))
	fetchTimeoutMs, _ := strconv.Atoi(getEnv("KEASY_WEB_FETCH_TIMEOUT_MS", "8000"))
	maxQueryLength, _ := strconv.Atoi(getEnv("KEASY_MAX_QUERY_LENGTH", "200"))
	webFallback := getEnv("KEASY_WEB_FALLBACK_ENABLED", "false") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "keasy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		DeepSeek: DeepSeekConfig{
			APIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			BaseURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
			Model:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		},
		Search: SearchConfig{
			APIKey:  getEnv("SEARCH_API_KEY", ""),
			BaseURL: getEnv("SEARCH_API_URL", "https://api.bing.microsoft.com/v7.0/search"),
		},
		Keasy: KeasyConfig{
			KbMinScore:         kbMinScore,
			KbMinResults:       kbMinResults,
			MaxKbChunks:        maxKbChunks,
			MaxWebResults:      maxWebResults,
			MaxWebSnippetChars: maxSnippet,
			WebFetchTimeout:    time.Duration(fetchTimeoutMs) * time.Millisecond,
			MaxQueryLength:     maxQueryLength,
			WebFallbackEnabled: webFallback,
		},
		Env: getEnv("APP_ENV", "development"),
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// IsProduction gates inclusion of the debug block in chat responses.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
