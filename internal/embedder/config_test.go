package embedder

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// clearEmbeddingEnv blanks every variable ConfigFromEnv reads so tests do
// not inherit the developer's shell.
func clearEmbeddingEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_ENDPOINT", "EMBEDDING_API_KEY",
		"EMBEDDING_DIMENSIONS", "EMBEDDING_TIMEOUT", "EMBEDDING_AZURE", "AZURE_OPENAI_API_VERSION",
		"OPENAI_API_KEY", "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "OLLAMA_HOST",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_DefaultsToLocal(t *testing.T) {
	clearEmbeddingEnv(t)

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Provider != ProviderLocal || cfg.Dimensions != DefaultLocalDimensions {
		t.Errorf("want local/%d, got %s/%d", DefaultLocalDimensions, cfg.Provider, cfg.Dimensions)
	}
	emb, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := emb.(*LocalEmbedder); !ok {
		t.Errorf("want *LocalEmbedder, got %T", emb)
	}
}

func TestConfigFromEnv_Remote(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "remote")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("EMBEDDING_TIMEOUT", "5s")
	t.Setenv("EMBEDDING_ENDPOINT", "https://example.test/v1/")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Provider != ProviderRemote {
		t.Errorf("provider: got %s", cfg.Provider)
	}
	if cfg.APIKey != "sk-fallback" {
		t.Errorf("api key should fall back to OPENAI_API_KEY, got %q", cfg.APIKey)
	}
	if cfg.Endpoint != "https://example.test/v1" {
		t.Errorf("endpoint should be trimmed, got %q", cfg.Endpoint)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout: got %s", cfg.Timeout)
	}
	if cfg.Model != defaultOpenAIModel {
		t.Errorf("model: got %q", cfg.Model)
	}
	emb, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := emb.(*RemoteEmbedder); !ok {
		t.Errorf("want *RemoteEmbedder, got %T", emb)
	}
}

func TestConfigFromEnv_Shorthands(t *testing.T) {
	tests := []struct {
		provider     string
		env          map[string]string
		wantEndpoint string
		wantModel    string
		wantAzure    bool
	}{
		{
			provider:     "openai",
			wantEndpoint: defaultOpenAIEndpoint,
			wantModel:    defaultOpenAIModel,
		},
		{
			provider:     "ollama",
			env:          map[string]string{"OLLAMA_HOST": "http://gpu:11434"},
			wantEndpoint: "http://gpu:11434/v1",
			wantModel:    defaultOllamaModel,
		},
		{
			provider:     "azure",
			env:          map[string]string{"AZURE_OPENAI_ENDPOINT": "https://res.openai.azure.com", "AZURE_OPENAI_API_KEY": "k"},
			wantEndpoint: "https://res.openai.azure.com/openai",
			wantModel:    defaultOpenAIModel,
			wantAzure:    true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			clearEmbeddingEnv(t)
			t.Setenv("EMBEDDING_PROVIDER", tc.provider)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := ConfigFromEnv()
			if err != nil {
				t.Fatalf("ConfigFromEnv: %v", err)
			}
			if cfg.Provider != ProviderRemote || cfg.Endpoint != tc.wantEndpoint ||
				cfg.Model != tc.wantModel || cfg.Azure != tc.wantAzure {
				t.Errorf("got %+v", cfg)
			}
		})
	}
}

func TestConfigFromEnv_Unknown(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "bedrock")
	if _, err := ConfigFromEnv(); err == nil {
		t.Error("want error for unknown provider")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      *Config
		wantErr  bool
		wantWarn string
	}{
		{name: "local", cfg: &Config{Provider: ProviderLocal}},
		{name: "remote ok", cfg: &Config{Provider: ProviderRemote, Endpoint: "http://x", APIKey: "k", Model: "text-embedding-3-small"}},
		{name: "remote no endpoint", cfg: &Config{Provider: ProviderRemote}, wantErr: true},
		{name: "azure no key", cfg: &Config{Provider: ProviderRemote, Endpoint: "http://x", Azure: true}, wantErr: true},
		{name: "chat model", cfg: &Config{Provider: ProviderRemote, Endpoint: "http://x", APIKey: "k", Model: "gpt-4o"}, wantWarn: "chat model"},
		{name: "no key", cfg: &Config{Provider: ProviderRemote, Endpoint: "http://x", Model: "nomic-embed-text"}, wantWarn: "without an API key"},
		{name: "nil", cfg: nil, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, nil))
			err := Validate(tc.cfg, log)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantWarn != "" && !strings.Contains(buf.String(), tc.wantWarn) {
				t.Errorf("log %q should contain %q", buf.String(), tc.wantWarn)
			}
		})
	}
}
