package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider binds a Transport to a specific model id and implements the
// chat/completions operations against an OpenAI-compatible endpoint.
type Provider struct {
	transport *Transport
	model     string
}

// NewProvider constructs a Provider from caller-supplied credentials. It is
// deliberately cheap to construct: providers hold no long-lived network
// state beyond the shared *http.Client inside Transport.
func NewProvider(apiKey, baseURL, model string) (*Provider, error) {
	transport, err := NewTransport(apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	return &Provider{transport: transport, model: model}, nil
}

const chatCompletionsEndpoint = "chat/completions"

// Complete performs a single non-streaming chat/completions call,
// forcing stream=false and overwriting request.Model with the provider's
// bound model id.
func (p *Provider) Complete(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	request.Stream = false
	request.Model = p.model

	text, err := p.transport.PostText(ctx, chatCompletionsEndpoint, request)
	if err != nil {
		return nil, err
	}

	var response ChatResponse
	if err := json.Unmarshal([]byte(text), &response); err != nil {
		return nil, fmt.Errorf("model: failed to parse chat response: %w", err)
	}
	return &response, nil
}

// Stream performs a streaming chat/completions call, forcing stream=true,
// and returns the SSE-decoded event sequence.
func (p *Provider) Stream(ctx context.Context, request ChatRequest, debugRaw bool) (<-chan StreamItem, error) {
	request.Stream = true
	request.Model = p.model

	body, err := p.transport.PostStream(ctx, chatCompletionsEndpoint, request)
	if err != nil {
		return nil, err
	}

	items := ParseSSE(ctx, body, debugRaw)
	wrapped := make(chan StreamItem, 64)
	go func() {
		defer close(wrapped)
		defer body.Close()
		for item := range items {
			wrapped <- item
		}
	}()
	return wrapped, nil
}

// ModelInfo reports capabilities conservatively inferred from substrings in
// the model id, matching the patterns providers commonly use for naming.
func (p *Provider) ModelInfo() ModelInfo {
	return InferModelInfo(p.model, "")
}

// InferModelInfo builds a ModelInfo for modelID, optionally tagging it with
// a providerID (the provider name, e.g. "openai").
func InferModelInfo(modelID, providerID string) ModelInfo {
	lower := strings.ToLower(modelID)

	vision := containsAny(lower, "vision", "gpt-4o", "claude-3", "gemini")
	reasoning := containsAny(lower, "o1", "o3", "r1", "reason", "deepseek")

	return ModelInfo{
		Id:          modelID,
		DisplayName: modelID,
		ProviderId:  providerID,
		Capabilities: Capabilities{
			Streaming: true,
			Tools:     true,
			Vision:    vision,
			Reasoning: reasoning,
		},
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
