package nlu

import (
	"context"
	"fmt"
	"strings"

	"carmarket-backend/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator produces extractions with Google's Gemini models.
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" || strings.HasPrefix(modelName, "gpt") {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiGenerator{client: cl, modelName: modelName}, nil
}

func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt string, history []Turn, utterance string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	m.ResponseMIMEType = "application/json"
	m.SetMaxOutputTokens(1024)

	cs := m.StartChat()
	cs.History = geminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(utterance))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// geminiHistory maps chat roles onto Gemini's user/model roles.
func geminiHistory(history []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return out
}
