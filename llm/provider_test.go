package llm

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"resp-1","choices":[{"index":0,"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	provider, err := NewProvider("test-key", srv.URL, "gpt-4o-mini")
	require.NoError(t, err)

	resp, err := provider.Complete(context.Background(), ChatRequest{
		Messages: []Message{NewUserMessage("hello")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hi there", resp.Choices[0].Message.Text())
}

func TestProvider_Stream_YieldsDecodedEventsThenCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, _ := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		writer := bufio.NewWriter(w)
		writer.WriteString("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"},\"finish_reason\":\"stop\"}]}\n")
		writer.Flush()
		if flusher != nil {
			flusher.Flush()
		}
		writer.WriteString("data: [DONE]\n")
		writer.Flush()
		if flusher != nil {
			flusher.Flush()
		}
	}))
	defer srv.Close()

	provider, err := NewProvider("test-key", srv.URL, "gpt-4o-mini")
	require.NoError(t, err)

	items, err := provider.Stream(context.Background(), ChatRequest{
		Messages: []Message{NewUserMessage("hello")},
	}, false)
	require.NoError(t, err)

	var got []StreamItem
	timeout := time.After(2 * time.Second)
	for {
		select {
		case item, ok := <-items:
			if !ok {
				goto done
			}
			got = append(got, item)
		case <-timeout:
			t.Fatal("timed out waiting for stream items")
		}
	}
done:
	require.Len(t, got, 2)
	assert.Equal(t, EventTextDelta, got[0].Event.Kind)
	assert.Equal(t, "hi", got[0].Event.Text)
	assert.Equal(t, EventDone, got[1].Event.Kind)
}

func TestInferModelInfo_CapabilityDetection(t *testing.T) {
	info := InferModelInfo("claude-3-5-sonnet", "anthropic")
	assert.True(t, info.Capabilities.Vision)
	assert.False(t, info.Capabilities.Reasoning)

	reasoning := InferModelInfo("o3-mini", "openai")
	assert.True(t, reasoning.Capabilities.Reasoning)

	plain := InferModelInfo("gpt-3.5-turbo", "openai")
	assert.False(t, plain.Capabilities.Vision)
	assert.False(t, plain.Capabilities.Reasoning)
	assert.True(t, plain.Capabilities.Streaming)
	assert.True(t, plain.Capabilities.Tools)
}
