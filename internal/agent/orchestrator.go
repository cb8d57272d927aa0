// Package agent exposes the turn orchestrator: one entry point that takes a
// user message and returns the reply envelope, owning per-user serialization
// and history persistence around the pipeline graph.
package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gamenerd/server/internal/agent/graph"
	"github.com/gamenerd/server/internal/agent/graph/conversations"
	"github.com/gamenerd/server/internal/agent/graph/nodes"
	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/registry"
	"github.com/gamenerd/server/internal/agent/search"
	errx "github.com/gamenerd/server/internal/core/error"
	logx "github.com/gamenerd/server/pkg/logger"
)

// Config holds everything needed to build the orchestrator end-to-end.
type Config struct {
	// LLM provider
	Provider string
	APIKey   string
	BaseURL  string

	Classifier model.ClassifierModelConfig
	Evidence   model.EvidenceModelConfig
	Responder  model.ResponderModelConfig
	Prompt     model.PromptConfig

	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository

	Search search.Config
}

// Orchestrator drives one turn at a time per user.
type Orchestrator struct {
	runner graph.Runner
	mm     *conversations.MessagesManager

	// locks serializes turns per user so concurrent messages from the same
	// user cannot interleave history writes.
	locks sync.Map
}

// New wires models, registry, conversation manager and graph into a ready
// Orchestrator.
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		Provider:      cfg.Provider,
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		ClassifierCfg: &cfg.Classifier,
		EvidenceCfg:   &cfg.Evidence,
		ResponderCfg:  &cfg.Responder,
	})
	if err != nil {
		return nil, err
	}

	reg, err := registry.New()
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	var searcher search.Searcher
	if client := search.NewHTTPClient(cfg.Search); client != nil {
		searcher = client
	}

	runner, err := graph.BuildGraph(ctx, &graph.GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		Registry:        reg,
		Searcher:        searcher,
		PromptConfig:    &cfg.Prompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Orchestrator built successfully")
	return NewOrchestrator(runner, mm), nil
}

// NewOrchestrator assembles an orchestrator from prebuilt parts.
func NewOrchestrator(runner graph.Runner, mm *conversations.MessagesManager) *Orchestrator {
	return &Orchestrator{runner: runner, mm: mm}
}

// HandleTurn processes one user message and returns the reply envelope.
//
// An empty query is the only input that surfaces as a Go error; every other
// failure mode is converted into a best-effort envelope so a caller always
// has something to show the user.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, query string) (result *model.TurnResult, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errx.ErrEmptyQuery
	}

	unlock := o.lockUser(userID)
	defer unlock()

	turnID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			logx.Error().
				Str("user_id", userID).
				Str("turn_id", turnID).
				Interface("panic", r).
				Msg("turn panicked")
			result = &model.TurnResult{
				Reply: "Sorry, something went wrong on my end. Please try again.",
				UI:    model.GenericUI(map[string]any{"error": "internal error"}),
			}
			result.Normalize()
			err = nil
		}
	}()

	out, invokeErr := o.runner.Invoke(ctx, model.QueryInput{
		UserID: userID,
		Query:  query,
		TurnID: turnID,
	})
	if invokeErr != nil {
		logx.Error().
			Str("user_id", userID).
			Str("turn_id", turnID).
			Err(invokeErr).
			Msg("pipeline invocation failed")
		result = &model.TurnResult{
			Reply: "Sorry, I ran into a problem answering that. Please try again in a moment.",
			UI:    model.GenericUI(map[string]any{"error": invokeErr.Error()}),
		}
		result.Normalize()
		return result, nil
	}
	if out == nil {
		out = &model.TurnResult{}
	}

	// error turns are delivered but never remembered
	if out.InputType != model.InputError {
		if histErr := o.mm.AppendExchange(ctx, userID, query, out.Reply); histErr != nil {
			logx.Error().
				Str("user_id", userID).
				Str("turn_id", turnID).
				Err(histErr).
				Msg("failed to persist exchange")
		}
	}

	out.Normalize()
	return out, nil
}

func (o *Orchestrator) lockUser(userID string) func() {
	v, _ := o.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
