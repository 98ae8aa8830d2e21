package nlu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carmarket-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerator_Generate(t *testing.T) {
	var got chatCompletionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"message\":\"hi\",\"filters\":{}}"}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.NLUConfig{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "sk-test",
		Model:   "gpt-test",
		Timeout: 2 * time.Second,
	})

	out, err := g.Generate(context.Background(), "system", []Turn{{Role: "user", Content: "earlier"}}, "now")
	require.NoError(t, err)

	assert.Equal(t, `{"message":"hi","filters":{}}`, out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, 1024, got.MaxCompletionTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, chatMessage{Role: "system", Content: "system"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "earlier"}, got.Messages[1])
	assert.Equal(t, chatMessage{Role: "user", Content: "now"}, got.Messages[2])
}

func TestOpenAIGenerator_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.NLUConfig{BaseURL: srv.URL, Model: "m", Timeout: time.Second})

	_, err := g.Generate(context.Background(), "s", nil, "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(config.NLUConfig{BaseURL: srv.URL, Model: "m", Timeout: time.Second})

	_, err := g.Generate(context.Background(), "s", nil, "u")
	assert.Error(t, err)
}

func TestGeminiHistory_MapsRoles(t *testing.T) {
	out := geminiHistory([]Turn{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}})
	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "model", out[1].Role)
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, _, err := NewGenerator(context.Background(), config.NLUConfig{Provider: "llama"})
	assert.Error(t, err)
}
