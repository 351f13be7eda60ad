package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Message is one turn of a chat, in the client wire format ("user" or
// "assistant").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces one model response. The production implementation is
// GeminiClient; tests use a fake to exercise the fallback chain.
type Generator interface {
	Generate(ctx context.Context, model, systemInstruction string, messages []Message, jsonOutput bool) (string, error)
}

var (
	// ErrQuotaExhausted marks upstream errors eligible for model fallback.
	ErrQuotaExhausted = errors.New("model quota exhausted")

	// ErrEmptyResponse covers blocked or empty completions.
	ErrEmptyResponse = errors.New("empty model response")
)

type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("google api key required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: c}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, model, systemInstruction string, messages []Message, jsonOutput bool) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" || m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if jsonOutput {
		// low temperature plus a JSON MIME type keeps structured output
		// parseable
		cfg.Temperature = genai.Ptr[float32](0.2)
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", ErrQuotaExhausted, apiErr.Message)
		}
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
