package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/garage-labs/carscope/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

const maxTokens = 2048

// OpenAI is a provider for OpenAI vision models
type OpenAI struct{}

// New returns a new OpenAI provider
func New() *OpenAI {
	return &OpenAI{}
}

// AnalyzeImage sends the prompt and image to OpenAI and returns the text reply
func (o *OpenAI) AnalyzeImage(ctx context.Context, config providers.Config) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	client := goopenai.NewClientWithConfig(clientConfig)

	parts := []goopenai.ChatMessagePart{
		{
			Type: goopenai.ChatMessagePartTypeText,
			Text: config.Prompt,
		},
	}
	if len(config.Image) > 0 {
		mimeType := config.MIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(config.Image)),
			},
		})
	}

	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: config.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:         goopenai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(config.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
