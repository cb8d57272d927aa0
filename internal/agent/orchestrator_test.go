package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenerd/server/internal/agent/graph/conversations"
	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/repo"
	errx "github.com/gamenerd/server/internal/core/error"
)

// stubRunner replays canned results and records the inputs it saw.
type stubRunner struct {
	results []*model.TurnResult
	err     error
	calls   []model.QueryInput
}

func (s *stubRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.TurnResult, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.calls) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	return s.results[idx], nil
}

func newTestOrchestrator(runner *stubRunner, maxStored int) (*Orchestrator, *repo.MemoryConversationRepository) {
	store := repo.NewMemoryConversationRepository(100)
	mm := conversations.NewMessagesManager(store, model.ConversationConfig{
		MaxStored:        maxStored,
		ClassifierWindow: 4,
		EvidenceWindow:   2,
		ResponderWindow:  3,
	})
	return NewOrchestrator(runner, mm), store
}

func TestHandleTurnEmptyQuery(t *testing.T) {
	o, _ := newTestOrchestrator(&stubRunner{}, 10)

	_, err := o.HandleTurn(context.Background(), "u1", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrEmptyQuery)
}

func TestHandleTurnDeliversAndPersists(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{results: []*model.TurnResult{{
		Reply:     "The Lakers play Saturday.",
		UI:        model.GenericUI(nil),
		InputType: model.InputSportsQuery,
	}}}
	o, store := newTestOrchestrator(runner, 10)

	result, err := o.HandleTurn(ctx, "u1", "when do the lakers play?")
	require.NoError(t, err)
	assert.Equal(t, "The Lakers play Saturday.", result.Reply)
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)

	// both sides of the exchange are stored
	history, err := store.LoadHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "when do the lakers play?", history.Messages[0].Content)
	assert.Equal(t, "The Lakers play Saturday.", history.Messages[1].Content)

	// the runner saw a fresh turn id
	require.Len(t, runner.calls, 1)
	assert.NotEmpty(t, runner.calls[0].TurnID)
	assert.Equal(t, "u1", runner.calls[0].UserID)
}

func TestHandleTurnErrorTurnsAreNotRemembered(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{results: []*model.TurnResult{{
		Reply:     "I'm having trouble understanding your request right now. Please try again.",
		UI:        model.GenericUI(map[string]any{"error": "classifier JSON did not unmarshal"}),
		InputType: model.InputError,
	}}}
	o, store := newTestOrchestrator(runner, 10)

	result, err := o.HandleTurn(ctx, "u1", "hello?")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reply)

	n, err := store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n, "failed classification must not pollute history")
}

func TestHandleTurnPipelineFailureYieldsEnvelope(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{err: errors.New("upstream exploded")}
	o, store := newTestOrchestrator(runner, 10)

	result, err := o.HandleTurn(ctx, "u1", "question")
	require.NoError(t, err, "pipeline failures surface as envelopes, not errors")
	assert.Contains(t, result.Reply, "problem answering")
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)
	assert.Equal(t, "upstream exploded", result.UI.Data["error"])

	n, err := store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandleTurnNormalizesEnvelope(t *testing.T) {
	runner := &stubRunner{results: []*model.TurnResult{{
		InputType: model.InputConversational,
	}}}
	o, _ := newTestOrchestrator(runner, 10)

	result, err := o.HandleTurn(context.Background(), "u1", "hm")
	require.NoError(t, err)
	assert.Equal(t, "Request processed.", result.Reply)
	assert.Equal(t, model.ComponentGenericText, result.UI.ComponentType)
	assert.NotNil(t, result.UI.Data)
}

func TestHandleTurnHistoryStaysBounded(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{results: []*model.TurnResult{{
		Reply:     "reply",
		UI:        model.GenericUI(nil),
		InputType: model.InputSportsQuery,
	}}}
	o, store := newTestOrchestrator(runner, 6)

	for i := 0; i < 10; i++ {
		_, err := o.HandleTurn(ctx, "u1", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	n, err := store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	history, err := store.LoadHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "question 7", history.Messages[0].Content)
}

func TestHandleTurnShortCircuitRepliesAreRemembered(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{results: []*model.TurnResult{{
		Reply:     "Hi there! Ask me anything about sports or gaming.",
		UI:        model.GenericUI(nil),
		InputType: model.InputSimpleGreeting,
	}}}
	o, store := newTestOrchestrator(runner, 10)

	_, err := o.HandleTurn(ctx, "u1", "hi")
	require.NoError(t, err)

	n, err := store.MessageCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHandleTurnUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{results: []*model.TurnResult{{
		Reply:     "reply",
		UI:        model.GenericUI(nil),
		InputType: model.InputSportsQuery,
	}}}
	o, store := newTestOrchestrator(runner, 10)

	_, err := o.HandleTurn(ctx, "u1", "question one")
	require.NoError(t, err)
	_, err = o.HandleTurn(ctx, "u2", "question two")
	require.NoError(t, err)

	h1, err := store.LoadHistory(ctx, "u1")
	require.NoError(t, err)
	h2, err := store.LoadHistory(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "question one", h1.Messages[0].Content)
	assert.Equal(t, "question two", h2.Messages[0].Content)
}
