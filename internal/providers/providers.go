package providers

import (
	"context"
	"os"
)

// Config represents one vision request to an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	MIMEType    string
}

// Provider defines the interface for a vision-capable LLM provider
type Provider interface {
	AnalyzeImage(ctx context.Context, config Config) (string, error)
}

// DefaultProvider returns the configured provider name, defaulting to ollama
func DefaultProvider() string {
	provider := os.Getenv("CARSCOPE_PROVIDER")
	if provider == "" {
		provider = "ollama"
	}
	return provider
}

// DefaultModel returns the default model for the given provider
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-4o"
		}
		return model
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-2.0-flash"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	default:
		return ""
	}
}
