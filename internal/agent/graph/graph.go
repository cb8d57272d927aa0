package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/gamenerd/server/internal/agent/graph/conversations"
	"github.com/gamenerd/server/internal/agent/graph/nodes"
	"github.com/gamenerd/server/internal/agent/graph/observers"
	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/registry"
	"github.com/gamenerd/server/internal/agent/search"
	logx "github.com/gamenerd/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.TurnResult, error)
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Registry        *registry.Registry
	Searcher        search.Searcher // nil when search is not configured
	PromptConfig    *model.PromptConfig
}

// GraphBuilder handles the construction of the turn pipeline graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.TurnResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.TurnResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.TurnResult, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildGraph constructs and compiles the turn pipeline, returning a Runner.
func BuildGraph(ctx context.Context, config *GraphConfig) (Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Classifier == nil ||
		config.ChatModels.Evidence == nil || config.ChatModels.Responder == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}
	if config.PromptConfig == nil {
		return nil, fmt.Errorf("prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable}, nil
}

// setupTools binds the widget catalog (plus the search tool when configured)
// to the responder model.
func (b *GraphBuilder) setupTools() error {
	toolInfos := b.config.Registry.ToolInfos()
	if b.config.Searcher != nil {
		toolInfos = append(toolInfos, search.ToolInfo())
	}

	if err := b.config.ChatModels.BindToolsToResponder(toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to responder model")
		return fmt.Errorf("failed to bind tools to responder model: %w", err)
	}
	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(b.config.MessagesManager, b.config.PromptConfig),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeClassifierModel,
		b.config.ChatModels.Classifier,
		compose.WithStatePostHandler(nodes.NewClassifierPostHandler(b.config.ChatModels.ClassifierModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeIntentParser,
		nodes.NewIntentParserNode(),
		compose.WithStatePostHandler(nodes.NewIntentParserPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeShortCircuit,
		nodes.NewShortCircuitNode(),
	)

	b.graph.AddLambdaNode(nodes.NodeEvidence,
		nodes.NewEvidenceNode(b.config.MessagesManager, b.config.ChatModels),
		compose.WithStatePostHandler(nodes.NewEvidencePostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeResponseAssembler,
		nodes.NewResponseAssemblerNode(b.config.MessagesManager, b.config.PromptConfig),
	)

	b.graph.AddLambdaNode(nodes.NodeResponder,
		nodes.NewResponderNode(b.config.ChatModels, b.config.Registry, b.config.Searcher),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeClassifierModel},
		{nodes.NodeClassifierModel, nodes.NodeIntentParser},
		{nodes.NodeShortCircuit, compose.END},
		{nodes.NodeEvidence, nodes.NodeResponseAssembler},
		{nodes.NodeResponseAssembler, nodes.NodeResponder},
		{nodes.NodeResponder, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the short-circuit routing branch.
func (b *GraphBuilder) addBranches() error {
	shortCircuitBranch := compose.NewGraphBranch(
		nodes.NewShortCircuitCondition(),
		map[string]bool{
			nodes.NodeShortCircuit: true,
			nodes.NodeEvidence:     true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeIntentParser, shortCircuitBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding short circuit branch")
		return fmt.Errorf("error adding short circuit branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.TurnResult], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
