package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/garage-labs/carscope/internal/providers"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct{}

// New returns a new Gemini provider
func New() *Gemini {
	return &Gemini{}
}

// AnalyzeImage sends the prompt and image to Gemini and returns the text reply
func (g *Gemini) AnalyzeImage(ctx context.Context, config providers.Config) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))

	parts := []genai.Part{genai.Text(config.Prompt)}
	if len(config.Image) > 0 {
		parts = append(parts, genai.ImageData(imageFormat(config.MIMEType), config.Image))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

// imageFormat converts a MIME type like "image/jpeg" to the bare
// format string genai.ImageData expects.
func imageFormat(mimeType string) string {
	if format, ok := strings.CutPrefix(mimeType, "image/"); ok && format != "" {
		return format
	}
	return "jpeg"
}
