package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/gamenerd/server/internal/agent/model"
	"github.com/gamenerd/server/internal/agent/providers/openaichat"
	logx "github.com/gamenerd/server/pkg/logger"
)

// Provider selects the upstream LLM backend.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	Provider      string
	APIKey        string
	BaseURL       string
	ClassifierCfg *model.ClassifierModelConfig
	EvidenceCfg   *model.EvidenceModelConfig
	ResponderCfg  *model.ResponderModelConfig
}

// ChatModels holds the three pipeline models. Each is wrapped with its own
// per-call timeout.
type ChatModels struct {
	Classifier einomodel.BaseChatModel
	Evidence   einomodel.BaseChatModel
	Responder  einomodel.ToolCallingChatModel

	ClassifierModelName string
	EvidenceModelName   string
	ResponderModelName  string
}

// NewChatModels creates the classifier, evidence and responder chat models
// for the configured provider.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.ClassifierCfg == nil || config.EvidenceCfg == nil || config.ResponderCfg == nil {
		return nil, fmt.Errorf("chat model configs are not fully set")
	}

	var (
		classifier, evidence, responder einomodel.ToolCallingChatModel
		err                             error
	)

	switch config.Provider {
	case ProviderOpenAI:
		classifier, evidence, responder, err = newOpenAIModels(config)
	case ProviderGemini, "":
		classifier, evidence, responder, err = newGeminiModels(ctx, config)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &ChatModels{
		Classifier:          withTimeout(classifier, config.ClassifierCfg.TimeoutSec),
		Evidence:            withTimeout(evidence, config.EvidenceCfg.TimeoutSec),
		Responder:           withTimeout(responder, config.ResponderCfg.TimeoutSec),
		ClassifierModelName: config.ClassifierCfg.Model,
		EvidenceModelName:   config.EvidenceCfg.Model,
		ResponderModelName:  config.ResponderCfg.Model,
	}, nil
}

func newGeminiModels(ctx context.Context, config ChatModelConfig) (classifier, evidence, responder einomodel.ToolCallingChatModel, err error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, nil, nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	newModel := func(name string, temperature float32, maxTokens int) (*gemini.ChatModel, error) {
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client:      client,
			Model:       name,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			ThinkingConfig: &genai.ThinkingConfig{
				IncludeThoughts: true,
				ThinkingBudget:  genai.Ptr(int32(2000)),
			},
		})
	}

	classifier, err = newModel(config.ClassifierCfg.Model, config.ClassifierCfg.Temperature, config.ClassifierCfg.MaxTokens)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, nil, nil, fmt.Errorf("error creating classifier model: %w", err)
	}
	evidence, err = newModel(config.EvidenceCfg.Model, config.EvidenceCfg.Temperature, config.EvidenceCfg.MaxTokens)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating evidence model")
		return nil, nil, nil, fmt.Errorf("error creating evidence model: %w", err)
	}
	responder, err = newModel(config.ResponderCfg.Model, config.ResponderCfg.Temperature, config.ResponderCfg.MaxTokens)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating responder model")
		return nil, nil, nil, fmt.Errorf("error creating responder model: %w", err)
	}
	return classifier, evidence, responder, nil
}

func newOpenAIModels(config ChatModelConfig) (classifier, evidence, responder einomodel.ToolCallingChatModel, err error) {
	classifier, err = openaichat.NewChatModel(openaichat.Config{
		APIKey:      config.APIKey,
		BaseURL:     config.BaseURL,
		Model:       config.ClassifierCfg.Model,
		Temperature: config.ClassifierCfg.Temperature,
		MaxTokens:   config.ClassifierCfg.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error creating classifier model: %w", err)
	}
	evidence, err = openaichat.NewChatModel(openaichat.Config{
		APIKey:      config.APIKey,
		BaseURL:     config.BaseURL,
		Model:       config.EvidenceCfg.Model,
		Temperature: config.EvidenceCfg.Temperature,
		MaxTokens:   config.EvidenceCfg.MaxTokens,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error creating evidence model: %w", err)
	}
	responder, err = openaichat.NewChatModel(openaichat.Config{
		APIKey:      config.APIKey,
		BaseURL:     config.BaseURL,
		Model:       config.ResponderCfg.Model,
		Temperature: config.ResponderCfg.Temperature,
		MaxTokens:   config.ResponderCfg.MaxTokens,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error creating responder model: %w", err)
	}
	return classifier, evidence, responder, nil
}

// BindToolsToResponder binds the widget and search tools to the responder
// model.
func (cm *ChatModels) BindToolsToResponder(tools []*schema.ToolInfo) error {
	bound, err := cm.Responder.WithTools(tools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}
	cm.Responder = bound
	logx.Debug().Int("tools", len(tools)).Msg("Successfully bound tools to responder model")
	return nil
}

// timeoutChatModel enforces a per-call deadline on every model invocation.
type timeoutChatModel struct {
	inner   einomodel.ToolCallingChatModel
	timeout time.Duration
}

func withTimeout(inner einomodel.ToolCallingChatModel, timeoutSec int) *timeoutChatModel {
	return &timeoutChatModel{
		inner:   inner,
		timeout: time.Duration(timeoutSec) * time.Second,
	}
}

func (m *timeoutChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return m.inner.Generate(ctx, in, opts...)
}

func (m *timeoutChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return m.inner.Stream(ctx, in, opts...)
}

func (m *timeoutChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	bound, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &timeoutChatModel{inner: bound, timeout: m.timeout}, nil
}

var _ einomodel.ToolCallingChatModel = (*timeoutChatModel)(nil)
