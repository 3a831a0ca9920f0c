package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server ServerConfig
	OpenAI OpenAIConfig
	Qdrant QdrantConfig
	Embed  EmbeddingConfig
	Search SearchConfig
	Stores StoresConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8000"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
}

type OpenAIConfig struct {
	Provider    string        `envconfig:"OPENAI_PROVIDER" default:"openai"`
	APIKey      string        `envconfig:"OPENAI_API_KEY" required:"true"`
	APIEndpoint string        `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1"`
	Model       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	APIVersion  string        `envconfig:"OPENAI_API_VERSION" default:"2023-05-15"`
	Timeout     time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
}

type QdrantConfig struct {
	URL     string        `envconfig:"QDRANT_URL" default:"http://localhost:6333"`
	APIKey  string        `envconfig:"QDRANT_API_KEY"`
	Timeout time.Duration `envconfig:"QDRANT_TIMEOUT" default:"15s"`
}

type EmbeddingConfig struct {
	BaseURL string        `envconfig:"EMBEDDING_ENDPOINT" default:"https://api.openai.com/v1"`
	Model   string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	Timeout time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"30s"`
}

type SearchConfig struct {
	MaxRetries int           `envconfig:"SEARCH_MAX_RETRIES" default:"3"`
	BaseDelay  time.Duration `envconfig:"SEARCH_BASE_DELAY" default:"2s"`
	Timeout    time.Duration `envconfig:"SEARCH_TIMEOUT" default:"15s"`
}

type StoresConfig struct {
	// ManifestPath points at the YAML manifest declaring named vector stores
	ManifestPath string `envconfig:"STORES_MANIFEST" default:"stores.yaml"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return &cfg, nil
}
