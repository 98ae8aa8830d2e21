package nlu

import (
	"context"
	"fmt"
	"strings"

	"carmarket-backend/internal/config"

	"github.com/go-resty/resty/v2"
)

// OpenAIGenerator talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIGenerator struct {
	client *resty.Client
	model  string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model               string         `json:"model"`
	Messages            []chatMessage  `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewOpenAIGenerator(cfg config.NLUConfig) *OpenAIGenerator {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}

	return &OpenAIGenerator{client: c, model: cfg.Model}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt string, history []Turn, utterance string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, t := range history {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: utterance})

	reqBody := chatCompletionRequest{
		Model:               g.model,
		Messages:            messages,
		ResponseFormat:      responseFormat{Type: "json_object"},
		MaxCompletionTokens: 1024,
	}

	var result chatCompletionResponse
	var apiErr openAIError
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("openai status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode(), resp.String())
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
