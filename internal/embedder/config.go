package embedder

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider selects the Embedder variant.
type Provider string

const (
	// ProviderLocal selects the in-process LocalEmbedder.
	ProviderLocal Provider = "local"
	// ProviderRemote selects the OpenAI-compatible RemoteEmbedder.
	ProviderRemote Provider = "remote"
)

// Default remote settings per flavour.
const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1"
	defaultOpenAIModel    = "text-embedding-3-small"
	defaultOllamaModel    = "nomic-embed-text"
	defaultAzureVersion   = "2025-04-01-preview"
)

// Config holds everything needed to construct an Embedder.
type Config struct {
	// Provider is local or remote.
	Provider Provider
	// Model is the remote embedding model (or Azure deployment) name.
	Model string
	// Endpoint is the remote API base URL.
	Endpoint string
	// APIKey authenticates against the remote endpoint. May be empty.
	APIKey string
	// Dimensions is the vector length: the local hash width, or the remote
	// "dimensions" request parameter (0 = model default).
	Dimensions int
	// Timeout bounds each remote call.
	Timeout time.Duration
	// Azure enables Azure OpenAI request shaping.
	Azure bool
	// APIVersion is the Azure OpenAI API version.
	APIVersion string
}

// ConfigFromEnv builds a Config from environment variables:
//
//	EMBEDDING_PROVIDER        local (default) | remote (alias api) | openai | azure | ollama
//	EMBEDDING_MODEL           remote model name
//	EMBEDDING_ENDPOINT        remote base URL (or the full /embeddings URL)
//	EMBEDDING_API_KEY         remote key; falls back to OPENAI_API_KEY
//	                          (AZURE_OPENAI_API_KEY for azure)
//	EMBEDDING_DIMENSIONS      vector length
//	EMBEDDING_TIMEOUT         per-call timeout, Go duration (default 30s)
//	EMBEDDING_AZURE           true to use Azure OpenAI request shaping
//	AZURE_OPENAI_API_VERSION  Azure API version
//
// openai, azure and ollama are shorthands for remote with that flavour's
// defaults filled in.
func ConfigFromEnv() (*Config, error) {
	raw := strings.ToLower(getEnvOrDefault("EMBEDDING_PROVIDER", string(ProviderLocal)))

	cfg := &Config{
		Model:      getEnv("EMBEDDING_MODEL"),
		Endpoint:   getEnv("EMBEDDING_ENDPOINT"),
		APIKey:     getEnv("EMBEDDING_API_KEY"),
		Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 0),
		Timeout:    getEnvDuration("EMBEDDING_TIMEOUT", DefaultRemoteTimeout),
		Azure:      getEnvBool("EMBEDDING_AZURE"),
		APIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", defaultAzureVersion),
	}

	switch raw {
	case "local":
		cfg.Provider = ProviderLocal
		if cfg.Dimensions == 0 {
			cfg.Dimensions = DefaultLocalDimensions
		}
		return cfg, nil
	case "remote", "api", "openai":
		cfg.Provider = ProviderRemote
		if cfg.APIKey == "" {
			cfg.APIKey = getEnv("OPENAI_API_KEY")
		}
		if cfg.Endpoint == "" && !cfg.Azure {
			cfg.Endpoint = defaultOpenAIEndpoint
		}
	case "azure":
		cfg.Provider = ProviderRemote
		cfg.Azure = true
		if cfg.APIKey == "" {
			cfg.APIKey = getEnv("AZURE_OPENAI_API_KEY")
		}
		if cfg.Endpoint == "" {
			if ep := getEnv("AZURE_OPENAI_ENDPOINT"); ep != "" {
				cfg.Endpoint = strings.TrimRight(ep, "/") + "/openai"
			}
		}
	case "ollama":
		cfg.Provider = ProviderRemote
		if cfg.Endpoint == "" {
			host := getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
			cfg.Endpoint = strings.TrimRight(host, "/") + "/v1"
		}
		if cfg.Model == "" {
			cfg.Model = defaultOllamaModel
		}
	default:
		return nil, fmt.Errorf("embedder: unknown EMBEDDING_PROVIDER %q: valid values are local, remote, openai, azure, ollama", raw)
	}

	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	// A full ".../embeddings" URL is accepted as well as the API base.
	cfg.Endpoint = strings.TrimSuffix(strings.TrimRight(cfg.Endpoint, "/"), "/embeddings")
	return cfg, nil
}

// New constructs the Embedder selected by cfg.
func New(cfg *Config) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embedder: config must not be nil")
	}
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewLocalEmbedder(cfg.Dimensions), nil
	case ProviderRemote:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("embedder: remote provider requires EMBEDDING_ENDPOINT")
		}
		return NewRemoteEmbedder(&RemoteConfig{
			BaseURL:    cfg.Endpoint,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Azure:      cfg.Azure,
			APIVersion: cfg.APIVersion,
			Timeout:    cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("embedder: unknown provider %q", cfg.Provider)
	}
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
