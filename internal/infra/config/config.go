package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"news-analyzer/internal/domain"
)

// Config carries every runtime setting, loaded from the environment with
// sensible defaults for local development.
type Config struct {
	Env      string
	Server   ServerConfig
	DB       DBConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32
	MinConns int32
}

// DSN renders the pgx connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type LLMConfig struct {
	Provider          string
	Model             string
	APIKey            string
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingAPIKey   string
	GenerateTimeout   int
	EmbedTimeout      int
	MaxRetries        int
	RequestsPerMinute int
}

type AnalysisConfig struct {
	Hours            int
	TopK             int
	Parallelism      int
	PersistSummaries bool
}

type WorkerConfig struct {
	Enabled         bool
	IntervalMinutes int
}

// Load reads the configuration from the environment.
func Load() *Config {
	llmProvider := getEnv("LLM_PROVIDER", "gemini")
	embeddingProvider := getEnv("EMBEDDING_PROVIDER", llmProvider)

	return &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Port: getEnv("PORT", "9020"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "news-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "news_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "news_password"),
			Name:     getEnv("DB_NAME", "news_db"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		LLM: LLMConfig{
			Provider:          llmProvider,
			Model:             getEnv("LLM_MODEL", "gemini-2.0-flash"),
			APIKey:            providerAPIKey(llmProvider),
			EmbeddingProvider: embeddingProvider,
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			EmbeddingAPIKey:   providerAPIKey(embeddingProvider),
			GenerateTimeout:   getEnvInt("LLM_GENERATE_TIMEOUT_SECONDS", 120),
			EmbedTimeout:      getEnvInt("LLM_EMBED_TIMEOUT_SECONDS", 30),
			MaxRetries:        getEnvInt("LLM_MAX_RETRIES", 3),
			RequestsPerMinute: getEnvInt("LLM_REQUESTS_PER_MINUTE", 15),
		},
		Analysis: AnalysisConfig{
			Hours:            getEnvInt("ANALYSIS_HOURS", 24),
			TopK:             getEnvInt("ANALYSIS_TOP_K", 50),
			Parallelism:      getEnvInt("ANALYSIS_PARALLELISM", 1),
			PersistSummaries: getEnvBool("ANALYSIS_PERSIST_SUMMARIES", true),
		},
		Worker: WorkerConfig{
			Enabled:         getEnvBool("WORKER_ENABLED", true),
			IntervalMinutes: getEnvInt("WORKER_INTERVAL_MINUTES", 60),
		},
	}
}

// Validate rejects configurations that cannot possibly run.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return &domain.ConfigurationError{
			Setting: strings.ToUpper(c.LLM.Provider) + "_API_KEY",
			Reason:  "api key for the generation provider is required",
		}
	}
	if c.LLM.EmbeddingAPIKey == "" {
		return &domain.ConfigurationError{
			Setting: strings.ToUpper(c.LLM.EmbeddingProvider) + "_API_KEY",
			Reason:  "api key for the embedding provider is required",
		}
	}
	if c.Analysis.Hours <= 0 {
		return &domain.ConfigurationError{
			Setting: "ANALYSIS_HOURS",
			Reason:  "analysis window must be positive",
		}
	}
	if c.Worker.IntervalMinutes <= 0 {
		return &domain.ConfigurationError{
			Setting: "WORKER_INTERVAL_MINUTES",
			Reason:  "worker interval must be positive",
		}
	}
	return nil
}

// providerAPIKey resolves the key for a provider, honoring the generic
// LLM_API_KEY override first.
func providerAPIKey(provider string) string {
	if key, ok := os.LookupEnv("LLM_API_KEY"); ok {
		return key
	}
	switch strings.ToLower(provider) {
	case "openai":
		return getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", "")
	case "anthropic":
		return getSecret("ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY_FILE", "")
	default:
		return getSecret("GEMINI_API_KEY", "GEMINI_API_KEY_FILE", "")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
