package summary

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/repofolio/repofolio/internal/config"
	apperrors "github.com/repofolio/repofolio/internal/errors"
)

// Generator turns a prompt into generated text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator generates text with the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini client. Without an API key it returns a
// not configured error.
func NewGeminiGenerator(ctx context.Context, cfg *config.SummaryConfig) (*GeminiGenerator, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, apperrors.NewNotConfiguredError("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// Generate sends the prompt as a single user turn
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate, skipping thoughts
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", errors.New("model returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("model returned an empty answer")
	}
	return text, nil
}
