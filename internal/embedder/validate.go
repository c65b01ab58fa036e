package embedder

import (
	"fmt"
	"log/slog"
	"strings"
)

// knownChatModelPrefixes contains name fragments that identify chat/completion
// models which are NOT suitable for embedding.
var knownChatModelPrefixes = []string{
	"gpt-4",
	"gpt-3.5",
	"gpt-35",
	"o1",
	"o3",
	"llama3",
	"llama2",
	"llama-3",
	"llama-2",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"phi3",
	"claude",
	"command-r",
	"deepseek",
	"qwen",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat/completion model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, prefix := range knownChatModelPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// Validate is a start-up pre-flight for cfg. It returns an error when the
// configuration is clearly broken (remote with no endpoint, Azure with no
// key) and logs a warning when the model name looks like a chat model, so
// operators get a clear message at boot rather than a failed first request.
func Validate(cfg *Config, log *slog.Logger) error {
	if cfg == nil {
		return fmt.Errorf("embedder: config must not be nil")
	}
	if cfg.Provider != ProviderRemote {
		return nil
	}

	if cfg.Endpoint == "" {
		if cfg.Azure {
			return fmt.Errorf("embedder: azure embedding requires AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
		return fmt.Errorf("embedder: remote embedding requires EMBEDDING_ENDPOINT")
	}
	if cfg.Azure && cfg.APIKey == "" {
		return fmt.Errorf("embedder: azure embedding requires AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
	}
	if cfg.APIKey == "" {
		log.Warn("embedder: remote embedding configured without an API key",
			slog.String("endpoint", cfg.Endpoint),
			slog.String("hint", "set EMBEDDING_API_KEY unless the endpoint is a local server"),
		)
	}

	if looksLikeChatModel(cfg.Model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, not an embedding model; "+
			"this will likely produce poor or broken embeddings",
			slog.String("model", cfg.Model),
			slog.String("hint", "use a dedicated embedding model e.g. nomic-embed-text, text-embedding-3-small"),
		)
	}
	return nil
}
