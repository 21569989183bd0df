package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fitryne/internal/app/policies"
)

const DefaultModel = "gemini-pro"

// Gemini adapts the Google generative AI client to TextGenerator.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini returns policies.ErrAINotConfigured when apiKey is blank.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, policies.ErrAINotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	m.SetCandidateCount(1)
	return &Gemini{client: client, model: m}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.model == nil {
		return "", policies.ErrAINotConfigured
	}
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String(), nil
}

func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
