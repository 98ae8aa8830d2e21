package nlu

import (
	"context"
	"fmt"

	"carmarket-backend/internal/config"
)

// NewGenerator builds the generator selected by NLU_PROVIDER. The returned
// close function releases provider resources and is never nil.
func NewGenerator(ctx context.Context, cfg config.NLUConfig) (Generator, func() error, error) {
	switch cfg.Provider {
	case "gemini":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gemini client: %w", err)
		}
		return g, g.Close, nil
	case "openai", "":
		return NewOpenAIGenerator(cfg), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown nlu provider %q", cfg.Provider)
	}
}
