// Package nlu turns a buyer's free-text message into a reply, a filter delta
// and a decision on whether to run a search.
package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"carmarket-backend/internal/models"
)

var (
	// ErrGeneration means the language model call itself failed.
	ErrGeneration = errors.New("nlu generation failed")
	// ErrMalformedResponse means the model answered with something that is
	// not the expected JSON object.
	ErrMalformedResponse = errors.New("nlu response malformed")
	// ErrMissingFields means the JSON object lacked message or filters.
	ErrMissingFields = errors.New("nlu response missing fields")
)

// Turn is one prior message passed to the model as context.
type Turn struct {
	Role    string
	Content string
}

// Generator produces the raw model output for a conversation.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []Turn, utterance string) (string, error)
}

type ExtractRequest struct {
	CurrentFilters models.SearchFilters
	History        []Turn
	Utterance      string
}

// Extraction is the parsed model output. Filters holds only the fields the
// model set; callers merge it over the session state.
type Extraction struct {
	Message      string
	Filters      models.SearchFilters
	ShouldSearch bool
}

type Extractor struct {
	gen Generator
}

func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (*Extraction, error) {
	prompt, err := SystemPrompt(req.CurrentFilters)
	if err != nil {
		return nil, err
	}

	raw, err := e.gen.Generate(ctx, prompt, req.History, req.Utterance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return ParseExtraction(raw)
}

const promptTemplate = `You are a helpful car search assistant for an Irish used car marketplace. Your job is to help buyers find their perfect used car through natural conversation.

Current active filters: %s

When users describe what car they're looking for, extract these possible filters:
- make: car brand (Toyota, Honda, BMW, etc.)
- model: specific model (Camry, Civic, 3 Series, etc.)
- minPrice / maxPrice: price range in euros, as integers
- minYear / maxYear: year range, as integers
- fuelType: Petrol, Diesel, Hybrid, Electric, Plug-in Hybrid, LPG
- transmission: Manual, Automatic, Semi-Automatic, CVT
- maxMileage: maximum mileage in km, as an integer
- location: city or county
- bodyType: Saloon, SUV, Hatchback, Coupe, Estate, etc.
- color: car color

Be conversational and friendly. If the request is vague, ask ONE clarifying question about the most important missing filter.
If there is enough information to search, confirm what you understood and set shouldSearch to true.
Only include filters the user mentioned in this message or wants to change.

Respond in JSON format with:
{
  "message": "Your conversational response",
  "filters": { ...filters to set },
  "shouldSearch": boolean
}`

// SystemPrompt renders the instructions sent ahead of the conversation.
func SystemPrompt(current models.SearchFilters) (string, error) {
	data, err := json.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("encoding current filters: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}

// ParseExtraction validates raw model output. Null filter values and unknown
// keys are ignored; a value of the wrong type rejects the whole response.
func ParseExtraction(raw string) (*Extraction, error) {
	body := stripCodeFence(raw)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &envelope); err != nil || envelope == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	rawMessage, ok := envelope["message"]
	if !ok || isNull(rawMessage) {
		return nil, fmt.Errorf("%w: message", ErrMissingFields)
	}
	var message string
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		return nil, fmt.Errorf("%w: message is not a string", ErrMalformedResponse)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrMissingFields)
	}

	rawFilters, ok := envelope["filters"]
	if !ok || isNull(rawFilters) {
		return nil, fmt.Errorf("%w: filters", ErrMissingFields)
	}
	filters, err := parseFilters(rawFilters)
	if err != nil {
		return nil, err
	}

	out := &Extraction{Message: message, Filters: filters}
	if rawSearch, ok := envelope["shouldSearch"]; ok && !isNull(rawSearch) {
		if err := json.Unmarshal(rawSearch, &out.ShouldSearch); err != nil {
			return nil, fmt.Errorf("%w: shouldSearch is not a boolean", ErrMalformedResponse)
		}
	}

	return out, nil
}

func parseFilters(raw json.RawMessage) (models.SearchFilters, error) {
	var f models.SearchFilters

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return f, fmt.Errorf("%w: filters is not an object", ErrMalformedResponse)
	}

	strs := map[string]**string{
		"make":         &f.Make,
		"model":        &f.Model,
		"fuelType":     &f.FuelType,
		"transmission": &f.Transmission,
		"location":     &f.Location,
		"bodyType":     &f.BodyType,
		"color":        &f.Color,
	}
	ints := map[string]**int{
		"minPrice":   &f.MinPrice,
		"maxPrice":   &f.MaxPrice,
		"minYear":    &f.MinYear,
		"maxYear":    &f.MaxYear,
		"maxMileage": &f.MaxMileage,
	}

	for key, value := range fields {
		if isNull(value) {
			continue
		}
		if dst, ok := strs[key]; ok {
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return f, fmt.Errorf("%w: filter %s is not a string", ErrMalformedResponse, key)
			}
			if s = strings.TrimSpace(s); s != "" {
				*dst = &s
			}
			continue
		}
		if dst, ok := ints[key]; ok {
			n, err := parseInt(value)
			if err != nil {
				return f, fmt.Errorf("%w: filter %s: %v", ErrMalformedResponse, key, err)
			}
			*dst = &n
		}
	}

	return f, nil
}
