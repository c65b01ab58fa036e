package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("EDUREC_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	path, err := Load("", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml", slog.New(slog.DiscardHandler))
	if err == nil {
		t.Fatal("expected error for a missing --config file")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: azure
  max_tokens: 512
  temperature: 0.3
  azure:
    endpoint: https://my-resource.openai.azure.com
    deployment: gpt-4o
    api_version: "2025-04-01-preview"
embedding:
  provider: remote
  model: text-embedding-3-small
  dimensions: 1536
  azure: true
catalog:
  db_path: /var/lib/edurec/catalog.db
retrieval:
  top_k: 8
rerank:
  timeout: 45s
  breaker_failures: 3
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE",
		"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS", "EMBEDDING_AZURE",
		"CATALOG_DB", "RETRIEVAL_TOP_K", "RERANK_TIMEOUT", "RERANK_BREAKER_FAILURES",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	loaded, err := Load(cfgPath, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"MODEL_PROVIDER":           "azure",
		"MODEL_MAX_TOKENS":         "512",
		"MODEL_TEMPERATURE":        "0.3",
		"AZURE_OPENAI_ENDPOINT":    "https://my-resource.openai.azure.com",
		"AZURE_OPENAI_DEPLOYMENT":  "gpt-4o",
		"AZURE_OPENAI_API_VERSION": "2025-04-01-preview",
		"EMBEDDING_PROVIDER":       "remote",
		"EMBEDDING_MODEL":          "text-embedding-3-small",
		"EMBEDDING_DIMENSIONS":     "1536",
		"EMBEDDING_AZURE":          "true",
		"CATALOG_DB":               "/var/lib/edurec/catalog.db",
		"RETRIEVAL_TOP_K":          "8",
		"RERANK_TIMEOUT":           "45s",
		"RERANK_BREAKER_FAILURES":  "3",
		"LOG_LEVEL":                "debug",
		"LOG_FORMAT":               "text",
	}
	for k, want := range checks {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: ollama
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading; it should NOT be overwritten.
	t.Setenv("MODEL_PROVIDER", "rules")

	if _, err := Load(cfgPath, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("MODEL_PROVIDER"); got != "rules" {
		t.Errorf("MODEL_PROVIDER: expected env override %q, got %q", "rules", got)
	}
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "edurec.yaml")
	if err := os.WriteFile(cfgPath, []byte("retrieval:\n  top_k: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDUREC_CONFIG", cfgPath)
	t.Setenv("RETRIEVAL_TOP_K", "")
	os.Unsetenv("RETRIEVAL_TOP_K")

	loaded, err := Load("", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}
	if got := os.Getenv("RETRIEVAL_TOP_K"); got != "3" {
		t.Errorf("RETRIEVAL_TOP_K = %q, want 3", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(cfgPath, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	content := []byte("EDUREC_DOTENV_NEW=from-file\nEDUREC_DOTENV_SET=from-file\n")
	if err := os.WriteFile(envPath, content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDUREC_DOTENV_NEW", "")
	os.Unsetenv("EDUREC_DOTENV_NEW")
	t.Setenv("EDUREC_DOTENV_SET", "from-env")

	ok, err := LoadDotEnv(envPath, slog.New(slog.DiscardHandler))
	if err != nil || !ok {
		t.Fatalf("LoadDotEnv = %v, %v; want true, nil", ok, err)
	}
	if got := os.Getenv("EDUREC_DOTENV_NEW"); got != "from-file" {
		t.Errorf("EDUREC_DOTENV_NEW = %q, want from-file", got)
	}
	if got := os.Getenv("EDUREC_DOTENV_SET"); got != "from-env" {
		t.Errorf("EDUREC_DOTENV_SET = %q, want from-env (env wins)", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	log := slog.New(slog.DiscardHandler)

	ok, err := LoadDotEnv("", log)
	if err != nil || ok {
		t.Errorf("default .env missing: got %v, %v; want false, nil", ok, err)
	}
	if _, err := LoadDotEnv("/nonexistent/.env", log); err == nil {
		t.Error("expected error for a missing explicit dotenv file")
	}
}

func TestFloat32Str(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float32
		want string
	}{
		{0.0, ""},
		{0.2, "0.2"},
		{0.3, "0.3"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := float32Str(tt.in); got != tt.want {
			t.Errorf("float32Str(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
