package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AlvinPlayz23/void-core/secretmanager"
)

// Transport is a single-endpoint HTTPS client bound to one provider's base
// URL and API key. It normalises the base URL, injects auth headers, and
// exposes the two request shapes every OpenAI-compatible provider needs:
// a plain JSON POST returning text, and a streaming POST returning a byte
// stream for the SSE decoder.
type Transport struct {
	baseURL string
	secrets secretmanager.SecretManager
	// secretName is the name passed to secrets.GetSecret to resolve the
	// API key; left empty and resolved via StaticSecretManager in the
	// common case where the caller already has the raw key.
	secretName string
	client     *http.Client
}

// NewTransport constructs a Transport from a raw API key, normalising
// baseURL by trimming a trailing slash and appending "/v1" unless the
// caller already included a version segment. Construction fails if apiKey
// is empty.
func NewTransport(apiKey, baseURL string) (*Transport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("validation: api key is required")
	}
	return &Transport{
		baseURL: normalizeBaseURL(baseURL),
		secrets: secretmanager.StaticSecretManager{APIKey: apiKey},
		client:  http.DefaultClient,
	}, nil
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if hasVersionSegment(baseURL) {
		return baseURL
	}
	return baseURL + "/v1"
}

func hasVersionSegment(baseURL string) bool {
	idx := strings.LastIndex(baseURL, "/")
	if idx < 0 {
		return false
	}
	segment := baseURL[idx+1:]
	return len(segment) > 0 && segment[0] == 'v' && isAllDigitsAfterV(segment)
}

func isAllDigitsAfterV(segment string) bool {
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(segment) > 1
}

func (t *Transport) apiKey() (string, error) {
	return t.secrets.GetSecret("")
}

func (t *Transport) endpointURL(endpoint string) string {
	return t.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (t *Transport) newRequest(ctx context.Context, endpoint string, body any, stream bool) (*http.Request, error) {
	key, err := t.apiKey()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("internal: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpointURL(endpoint), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("internal: failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	return req, nil
}

// PostText sends body to endpoint and returns the response body as text.
// A non-2xx response fails with a *ProviderError carrying the status and
// body.
func (t *Transport) PostText(ctx context.Context, endpoint string, body any) (string, error) {
	req, err := t.newRequest(ctx, endpoint, body, false)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider connection error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("provider connection error: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{Status: resp.StatusCode, Body: string(data)}
	}

	return string(data), nil
}

// PostStream sends body to endpoint and returns the live response body as
// an io.ReadCloser for the SSE decoder to consume. The same non-2xx error
// contract as PostText applies to the initial response; once streaming,
// transport errors surface as stream items rather than from this call.
func (t *Transport) PostStream(ctx context.Context, endpoint string, body any) (io.ReadCloser, error) {
	req, err := t.newRequest(ctx, endpoint, body, true)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider connection error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &ProviderError{Status: resp.StatusCode, Body: string(data)}
	}

	return resp.Body, nil
}
