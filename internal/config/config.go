package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	OpenSearch OpenSearchConfig
	Ollama     OllamaConfig
	Auth       AuthConfig
}

// PostgreSQLConfig holds the session store database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	DefaultSize int
	MaxSize     int
}

// OpenSearchConfig holds the listing search engine configuration
type OpenSearchConfig struct {
	URL              string
	User             string
	Password         string
	Index            string
	VerifySSL        bool
	Timeout          int
	EmbeddingModelID string
	NeuralK          int
}

// OllamaConfig holds the language model endpoint configuration
type OllamaConfig struct {
	URL         string
	Model       string
	Temperature float64
	NumPredict  int
	Timeout     int
}

// AuthConfig holds Keycloak bearer-token verification configuration
type AuthConfig struct {
	Enabled      bool
	KeycloakURL  string
	InternalURL  string
	Realm        string
	JWKSCacheTTL int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "smart_search"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			DefaultSize: getEnvAsInt("SEARCH_DEFAULT_SIZE", 25),
			MaxSize:     getEnvAsInt("SEARCH_MAX_SIZE", 100),
		},
		OpenSearch: OpenSearchConfig{
			URL:              getEnv("OPENSEARCH_URL", "https://localhost:9200"),
			User:             getEnv("OPENSEARCH_USER", "admin"),
			Password:         getEnv("OPENSEARCH_PASS", ""),
			Index:            getEnv("OPENSEARCH_INDEX", "real-estate-*"),
			VerifySSL:        getEnvAsBool("OPENSEARCH_VERIFY_SSL", false),
			Timeout:          getEnvAsInt("OPENSEARCH_TIMEOUT", 10),
			EmbeddingModelID: getEnv("EMBEDDING_MODEL_ID", ""),
			NeuralK:          getEnvAsInt("NEURAL_SEARCH_K", 100),
		},
		Ollama: OllamaConfig{
			URL:         getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:       getEnv("OLLAMA_MODEL", "gpt-oss:20b-cloud"),
			Temperature: getEnvAsFloat("OLLAMA_TEMPERATURE", 0.1),
			NumPredict:  getEnvAsInt("OLLAMA_NUM_PREDICT", 2000),
			Timeout:     getEnvAsInt("OLLAMA_TIMEOUT", 120),
		},
		Auth: AuthConfig{
			Enabled:      getEnvAsBool("AUTH_ENABLED", false),
			KeycloakURL:  getEnv("KEYCLOAK_URL", "https://auth.immocloud.ro"),
			InternalURL:  getEnv("KEYCLOAK_INTERNAL_URL", ""),
			Realm:        getEnv("KEYCLOAK_REALM", "immocloud"),
			JWKSCacheTTL: getEnvAsInt("JWKS_CACHE_TTL", 3600),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the session store connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// GetKeycloakIssuer returns the expected token issuer
func (c *Config) GetKeycloakIssuer() string {
	return fmt.Sprintf("%s/realms/%s", c.Auth.KeycloakURL, c.Auth.Realm)
}

// GetKeycloakJWKSURL returns the signing key endpoint. The internal URL is
// preferred for fetching certs when configured.
func (c *Config) GetKeycloakJWKSURL() string {
	base := c.Auth.KeycloakURL
	if c.Auth.InternalURL != "" {
		base = c.Auth.InternalURL
	}
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", base, c.Auth.Realm)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
