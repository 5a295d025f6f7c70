package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Oracle is the text-generation capability the interpretation services depend
// on. It is unreliable by contract: callers must treat any error as "use the
// deterministic fallback" and never surface it.
type Oracle interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiClient wraps the Gemini generative model behind the Oracle interface.
type GeminiClient struct {
	model *genai.GenerativeModel
}

// NewGeminiClient builds a Gemini-backed Oracle.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiClient{model: model}, nil
}

// GenerateContent sends a prompt and concatenates the text parts of the reply.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}
