package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationRepository(10)

	require.NoError(t, store.AddMessage(ctx, "u1", schema.UserMessage("hello")))
	require.NoError(t, store.AddMessage(ctx, "u1", schema.AssistantMessage("hi there", nil)))

	history, err := store.LoadHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, "hi there", history.Messages[1].Content)

	n, err := store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryRepoUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationRepository(10)

	history, err := store.LoadHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)

	n, err := store.MessageCount(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryRepoTrimHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationRepository(10)

	for i := 0; i < 6; i++ {
		require.NoError(t, store.AddMessage(ctx, "u1", schema.UserMessage(fmt.Sprintf("m%d", i))))
	}
	require.NoError(t, store.TrimHistory(ctx, "u1", 4))

	history, err := store.LoadHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 4)
	assert.Equal(t, "m2", history.Messages[0].Content)
	assert.Equal(t, "m5", history.Messages[3].Content)
}

func TestMemoryRepoClearHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationRepository(10)

	require.NoError(t, store.AddMessage(ctx, "u1", schema.UserMessage("m")))
	require.NoError(t, store.ClearHistory(ctx, "u1"))

	n, err := store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.SessionCount())
}

func TestMemoryRepoLRUEviction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationRepository(2)

	require.NoError(t, store.AddMessage(ctx, "u1", schema.UserMessage("a")))
	require.NoError(t, store.AddMessage(ctx, "u2", schema.UserMessage("b")))

	// touch u1 so u2 becomes the eviction candidate
	_, err := store.LoadHistory(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.AddMessage(ctx, "u3", schema.UserMessage("c")))

	assert.Equal(t, 2, store.SessionCount())

	n, err := store.MessageCount(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, n, "least recently used session should be evicted")

	n, err = store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
