package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported vector store backends.
const (
	StoreWeaviate = "weaviate"
	StoreQdrant   = "qdrant"
	StoreChromem  = "chromem"
)

// minChunkSize keeps the hard-cut fallback able to fit at least one rune per chunk
// (a single UTF-8 rune never encodes to more than four BPE tokens).
const minChunkSize = 8

// Config holds all configuration for the application.
// It is built once at startup and passed to components; nothing mutates it afterwards.
type Config struct {
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	VectorStore         string
	WeaviateURL         string
	WeaviateAPIKey      string
	QdrantURL           string
	QdrantAPIKey        string
	ChromemPath         string
	CollectionName      string
	EmbeddingModel      string
	EmbeddingDimensions int
	GenerativeModel     string
	ChunkSize           int
	ChunkEncoding       string
	FetchTimeout        time.Duration
	LogLevel            slog.Level
	LogFormat           string
	APIPort             string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		VectorStore:     strings.ToLower(getEnv("VECTOR_STORE", StoreWeaviate)),
		WeaviateURL:     getEnv("WEAVIATE_URL", "http://localhost:8080"),
		WeaviateAPIKey:  getEnv("WEAVIATE_API_KEY", ""),
		QdrantURL:       getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:    getEnv("QDRANT_API_KEY", ""),
		ChromemPath:     getEnv("CHROMEM_PATH", ""),
		CollectionName:  getEnv("COLLECTION_NAME", "LangGraphDocs"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		GenerativeModel: getEnv("GENERATIVE_MODEL", ""),
		ChunkEncoding:   getEnv("CHUNK_ENCODING", "cl100k_base"),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		APIPort:         getEnv("API_PORT", "9000"),
	}

	var err error
	if cfg.EmbeddingDimensions, err = getEnvInt("EMBEDDING_DIMENSIONS", 1536); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 200); err != nil {
		return nil, err
	}

	timeout := getEnv("FETCH_TIMEOUT", "30s")
	cfg.FetchTimeout, err = time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be a valid duration: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	cfg.WeaviateURL = weaviateURL(cfg.WeaviateURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	switch c.VectorStore {
	case StoreWeaviate:
		u, err := url.Parse(weaviateURL(c.WeaviateURL))
		if err != nil || u.Host == "" {
			return fmt.Errorf("WEAVIATE_URL must be an absolute URL, got %q", c.WeaviateURL)
		}
		if c.IsWeaviateCloud() && c.WeaviateAPIKey == "" {
			return fmt.Errorf("WEAVIATE_API_KEY is required for Weaviate Cloud")
		}
	case StoreQdrant:
		if _, err := url.Parse(c.QdrantURL); err != nil {
			return fmt.Errorf("QDRANT_URL is invalid: %w", err)
		}
		if c.EmbeddingDimensions <= 0 {
			return fmt.Errorf("EMBEDDING_DIMENSIONS must be greater than 0")
		}
	case StoreChromem:
	default:
		return fmt.Errorf("VECTOR_STORE must be one of %s, %s, %s; got %q", StoreWeaviate, StoreQdrant, StoreChromem, c.VectorStore)
	}

	if c.CollectionName == "" {
		return fmt.Errorf("COLLECTION_NAME is required")
	}
	if c.ChunkSize < minChunkSize {
		return fmt.Errorf("CHUNK_SIZE must be at least %d", minChunkSize)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be greater than 0")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}
	return nil
}

// IsWeaviateCloud reports whether WeaviateURL points at a managed cloud cluster.
func (c *Config) IsWeaviateCloud() bool {
	return strings.Contains(c.WeaviateURL, ".cloud")
}

// weaviateURL adds an https scheme to a bare cloud cluster hostname.
// Other values are returned unchanged.
func weaviateURL(raw string) string {
	if raw == "" || strings.Contains(raw, "://") || !strings.Contains(raw, ".cloud") {
		return raw
	}
	return "https://" + raw
}

// loadDotEnv loads the nearest .env file, looking in the working directory first
// and then walking up a few parents. Missing files are not an error.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		_ = godotenv.Load()
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
