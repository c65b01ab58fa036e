// Package provider selects and constructs the chat model used by the LLM
// re-ranker. Supported backends: any OpenAI-compatible endpoint (OpenAI,
// Hugging Face router, OpenRouter), Azure OpenAI, Ollama, Google Gemini, and
// Volcengine Ark. The "rules" backend disables remote ranking entirely.
package provider

import (
	"fmt"
	"strings"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenAI selects an OpenAI-compatible chat-completions endpoint.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects the Volcengine Ark model runtime.
	BackendArk Backend = "ark"
	// BackendRules disables the remote model; re-ranking is rule-based only.
	BackendRules Backend = "rules"
)

// ProviderOpenAI holds settings for an OpenAI-compatible endpoint.
type ProviderOpenAI struct {
	// APIKey is the Bearer token.
	APIKey string
	// BaseURL is the API base, e.g. "https://router.huggingface.co/v1".
	// Empty selects the OpenAI default.
	BaseURL string
	// Model is the model slug sent in the request.
	Model string
}

// ProviderAzureOpenAI holds settings for Azure OpenAI Service.
type ProviderAzureOpenAI struct {
	// APIKey is the api-key header value.
	APIKey string
	// Endpoint is the resource endpoint, e.g. "https://my.openai.azure.com".
	Endpoint string
	// Deployment is the deployment name used as the model.
	Deployment string
	// APIVersion is the REST API version, e.g. "2024-02-01".
	APIVersion string
}

// ProviderOllama holds settings for a local Ollama server.
type ProviderOllama struct {
	// Host is the server base URL, e.g. "http://localhost:11434".
	Host string
	// Model is the pulled model name.
	Model string
}

// ProviderGemini holds settings for Google Gemini.
type ProviderGemini struct {
	// APIKey is the AI Studio key.
	APIKey string
	// Model is the Gemini model name.
	Model string
}

// ProviderArk holds settings for Volcengine Ark.
type ProviderArk struct {
	// APIKey is the Ark API key.
	APIKey string
	// BaseURL overrides the regional endpoint. Empty selects the SDK default.
	BaseURL string
	// Model is the Ark endpoint/model id.
	Model string
}

// SharedTuning holds generation parameters applied to every backend that
// supports them.
type SharedTuning struct {
	// MaxTokens caps the number of tokens generated per response.
	MaxTokens int
	// Temperature controls response randomness.
	Temperature float32
}

// Config holds all provider-level configuration. Only the block matching
// Backend is consulted.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	OpenAI      ProviderOpenAI
	AzureOpenAI ProviderAzureOpenAI
	Ollama      ProviderOllama
	Gemini      ProviderGemini
	Ark         ProviderArk
	Tuning      SharedTuning
}

// Validate reports the first missing setting for the selected backend,
// naming the environment variable that supplies it.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider: openai backend requires LLM_API_KEY (or HF_TOKEN / OPENROUTER_API_KEY / OPENAI_API_KEY)")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("provider: openai backend requires LLM_MODEL")
		}
	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("provider: azure backend requires AZURE_OPENAI_API_KEY")
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("provider: azure backend requires AZURE_OPENAI_ENDPOINT")
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("provider: azure backend requires AZURE_OPENAI_DEPLOYMENT")
		}
	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("provider: ollama backend requires OLLAMA_MODEL")
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("provider: gemini backend requires GOOGLE_API_KEY")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("provider: gemini backend requires GEMINI_MODEL")
		}
	case BackendArk:
		if c.Ark.APIKey == "" {
			return fmt.Errorf("provider: ark backend requires ARK_API_KEY")
		}
		if c.Ark.Model == "" {
			return fmt.Errorf("provider: ark backend requires ARK_MODEL")
		}
	case BackendRules:
	default:
		return fmt.Errorf("provider: unknown backend %q: valid values are openai, azure, ollama, gemini, ark, rules", c.Backend)
	}
	return nil
}

// HasCredential reports whether the selected backend can be called at all.
// Ollama needs no key; the rules backend never has a usable model.
func (c *Config) HasCredential() bool {
	switch c.Backend {
	case BackendOpenAI:
		return c.OpenAI.APIKey != ""
	case BackendAzure:
		return c.AzureOpenAI.APIKey != ""
	case BackendOllama:
		return true
	case BackendGemini:
		return c.Gemini.APIKey != ""
	case BackendArk:
		return c.Ark.APIKey != ""
	}
	return false
}

// ModelName returns the model identifier of the selected backend, for logs.
func (c *Config) ModelName() string {
	switch c.Backend {
	case BackendOpenAI:
		return c.OpenAI.Model
	case BackendAzure:
		return c.AzureOpenAI.Deployment
	case BackendOllama:
		return c.Ollama.Model
	case BackendGemini:
		return c.Gemini.Model
	case BackendArk:
		return c.Ark.Model
	}
	return ""
}

// isAzureReasoningModel reports whether an Azure deployment name denotes an
// o-series or codex reasoning model. Those reject temperature and
// max_tokens, so the factory omits both for them.
func isAzureReasoningModel(deployment string) bool {
	d := strings.ToLower(deployment)
	for _, prefix := range []string{"o1", "o3", "o4", "codex"} {
		if strings.HasPrefix(d, prefix) {
			return true
		}
	}
	return false
}
