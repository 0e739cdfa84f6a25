package llm

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, items <-chan StreamItem) []StreamItem {
	t.Helper()
	var got []StreamItem
	timeout := time.After(2 * time.Second)
	for {
		select {
		case item, ok := <-items:
			if !ok {
				return got
			}
			got = append(got, item)
		case <-timeout:
			t.Fatal("timed out waiting for SSE items")
		}
	}
}

func TestParseSSE_PureTextStreaming(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\" world\"},\"finish_reason\":\"stop\"}]}\n" +
		"data: [DONE]\n"

	items := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	require.Len(t, items, 3)
	require.NoError(t, items[0].Err)
	assert.Equal(t, EventTextDelta, items[0].Event.Kind)
	assert.Equal(t, "Hello", items[0].Event.Text)
	assert.Equal(t, EventTextDelta, items[1].Event.Kind)
	assert.Equal(t, " world", items[1].Event.Text)
	assert.Equal(t, EventDone, items[2].Event.Kind)
}

func TestParseSSE_SingleToolCallAcrossChunks(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"c1\",\"function\":{\"name\":\"read_file\"}}]}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"{\\\"path\\\":\\\"\"}}]}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"a.txt\\\"}\"}}]},\"finish_reason\":\"tool_calls\"}]}\n" +
		"data: [DONE]\n"

	items := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	require.Len(t, items, 2)
	require.NoError(t, items[0].Err)
	assert.Equal(t, EventToolCall, items[0].Event.Kind)
	assert.Equal(t, "c1", items[0].Event.ToolCall.Id)
	assert.Equal(t, "read_file", items[0].Event.ToolCall.Function.Name)
	assert.Equal(t, `{"path":"a.txt"}`, items[0].Event.ToolCall.Function.Arguments)
	assert.Equal(t, EventDone, items[1].Event.Kind)
}

func TestParseSSE_MultipleToolCallsKeepUniqueIDsAndOrder(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"c1\",\"function\":{\"name\":\"a\",\"arguments\":\"{}\"}}]}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":1,\"id\":\"c2\",\"function\":{\"name\":\"b\",\"arguments\":\"{}\"}}]},\"finish_reason\":\"tool_calls\"}]}\n" +
		"data: [DONE]\n"

	items := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	require.Len(t, items, 3)
	assert.Equal(t, "c1", items[0].Event.ToolCall.Id)
	assert.Equal(t, "c2", items[1].Event.ToolCall.Id)
	assert.Equal(t, EventDone, items[2].Event.Kind)

	seen := map[string]bool{}
	for _, item := range items {
		if item.Event.Kind == EventToolCall {
			require.False(t, seen[item.Event.ToolCall.Id])
			seen[item.Event.ToolCall.Id] = true
		}
	}
}

func TestParseSSE_DebugRawOnlyWhenRequested(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"},\"finish_reason\":\"stop\"}]}\ndata: [DONE]\n"

	withoutDebug := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))
	for _, item := range withoutDebug {
		assert.NotEqual(t, EventRaw, item.Event.Kind)
	}

	withDebug := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), true))
	var rawCount int
	for _, item := range withDebug {
		if item.Event.Kind == EventRaw {
			rawCount++
		}
	}
	assert.Equal(t, 2, rawCount)
}

func TestParseSSE_ErrorFieldBecomesStreamError(t *testing.T) {
	payload := "data: {\"error\":{\"message\":\"rate limited\"}}\ndata: [DONE]\n"

	items := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	require.Len(t, items, 2)
	require.Error(t, items[0].Err)
	assert.Contains(t, items[0].Err.Error(), "rate limited")
}

func TestParseSSE_PrematureDoneBeforeFinishIsIdempotent(t *testing.T) {
	payload := "data: [DONE]\ndata: [DONE]\n"

	items := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	require.Len(t, items, 1)
	assert.Equal(t, EventDone, items[0].Event.Kind)
}

func TestParseSSE_CRLFNormalized(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"},\"finish_reason\":\"stop\"}]}\r\ndata: [DONE]\r\n"

	items := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	require.Len(t, items, 2)
	assert.Equal(t, "hi", items[0].Event.Text)
}

func TestParseSSE_IdempotentUnderChunkSplitting(t *testing.T) {
	payload := "data: {\"choices\":[{\"delta\":{\"content\":\"ab\"},\"finish_reason\":\"stop\"}]}\ndata: [DONE]\n"

	whole := collect(t, ParseSSE(context.Background(), strings.NewReader(payload), false))

	split := collect(t, ParseSSE(context.Background(), &slowReader{data: []byte(payload), chunk: 3}, false))

	require.Equal(t, len(whole), len(split))
	for i := range whole {
		assert.Equal(t, whole[i].Event, split[i].Event)
	}
}

// slowReader returns data in small chunks to exercise the scanner's
// line-reassembly across multiple Read calls.
type slowReader struct {
	data  []byte
	chunk int
	pos   int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}
