// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string

	// AI platform credentials
	OpenAIAPIKey     string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicModel   string
	PerplexityAPIKey string
	PerplexityModel  string

	// SEO data provider (DataForSEO)
	DataForSEOLogin    string
	DataForSEOPassword string

	// Brand tracking
	BrandName     string
	DefaultClient string

	DatabaseURL string
	Database    DatabaseConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4.1"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		PerplexityAPIKey: os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", "sonar"),

		DataForSEOLogin:    os.Getenv("DATAFORSEO_LOGIN"),
		DataForSEOPassword: os.Getenv("DATAFORSEO_PASSWORD"),

		BrandName:     getEnv("BRAND_NAME", "Stake"),
		DefaultClient: getEnv("DEFAULT_CLIENT", "Stake"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, fall back to individual env vars
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "brandsight"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		}
	}
	config.Database = dbConfig

	return config
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	port := 5432
	if u.Port() != "" {
		if p, err := strconv.Atoi(u.Port()); err == nil {
			port = p
		}
	}

	password, _ := u.User.Password()
	name := ""
	if len(u.Path) > 1 {
		name = u.Path[1:]
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "require"
	}

	return DatabaseConfig{
		Host:            u.Hostname(),
		Port:            port,
		User:            u.User.Username(),
		Password:        password,
		Name:            name,
		SSLMode:         sslMode,
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
