package session

import (
	"testing"

	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateGeneratesUUIDWhenIdEmpty(t *testing.T) {
	store := NewStore()
	s := store.Create("", "")
	assert.NotEmpty(t, s.Id)
}

func TestStore_CreatePreservesGivenId(t *testing.T) {
	store := NewStore()
	s := store.Create("fixed-id", "my session")
	assert.Equal(t, "fixed-id", s.Id)
	assert.Equal(t, "my session", s.Name)
}

func TestStore_GetMissingReturnsFalse(t *testing.T) {
	store := NewStore()
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestStore_AppendThenReplaceMessages(t *testing.T) {
	store := NewStore()
	s := store.Create("s1", "")

	store.Append(s.Id, llm.NewUserMessage("hi"))
	got, _ := store.Get(s.Id)
	require.Len(t, got.Messages, 1)

	store.ReplaceMessages(s.Id, []llm.Message{llm.NewUserMessage("a"), llm.NewAssistantTextMessage("b")})
	got, _ = store.Get(s.Id)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "a", got.Messages[0].Text())
}

func TestStore_SetNameClearDelete(t *testing.T) {
	store := NewStore()
	s := store.Create("s1", "old")
	store.Append(s.Id, llm.NewUserMessage("hi"))

	store.SetName(s.Id, "new")
	got, _ := store.Get(s.Id)
	assert.Equal(t, "new", got.Name)

	store.Clear(s.Id)
	got, _ = store.Get(s.Id)
	assert.Empty(t, got.Messages)

	store.Delete(s.Id)
	_, ok := store.Get(s.Id)
	assert.False(t, ok)
}

func TestStore_SummariesReflectMessageCount(t *testing.T) {
	store := NewStore()
	s := store.Create("s1", "n")
	store.AppendMany(s.Id, []llm.Message{llm.NewUserMessage("a"), llm.NewAssistantTextMessage("b")})

	summaries := store.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].MessageCount)
}

func TestStore_OperationsOnMissingIdAreNoOps(t *testing.T) {
	store := NewStore()
	store.Append("missing", llm.NewUserMessage("x"))
	store.SetName("missing", "n")
	store.Clear("missing")
	store.Delete("missing") // must not panic
}
