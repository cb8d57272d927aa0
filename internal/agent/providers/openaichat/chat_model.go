// Package openaichat adapts the OpenAI chat completion API (and compatible
// backends) to the eino chat-model interfaces, so the pipeline can swap
// providers without touching graph code.
package openaichat

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	logx "github.com/gamenerd/server/pkg/logger"
)

// Config configures one ChatModel instance.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	// JSONMode forces a JSON-object response format, used by the classifier.
	JSONMode bool
}

// ChatModel is an eino-compatible chat model over the OpenAI SDK.
type ChatModel struct {
	client *openai.Client
	cfg    Config
	tools  []openai.Tool
}

// NewChatModel builds a ChatModel. BaseURL is optional and supports
// OpenAI-compatible gateways.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model name is empty")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &ChatModel{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}, nil
}

// WithTools returns a copy of the model bound to the given tool set.
func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	lowered, err := lowerTools(tools)
	if err != nil {
		return nil, err
	}
	clone := &ChatModel{
		client: m.client,
		cfg:    m.cfg,
		tools:  lowered,
	}
	return clone, nil
}

func (m *ChatModel) Generate(ctx context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		Messages:    toOpenAIMessages(in),
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxTokens,
	}
	if m.cfg.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if len(m.tools) > 0 {
		req.Tools = m.tools
		req.ToolChoice = "auto"
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logx.Error().Err(err).Str("model", m.cfg.Model).Msg("chat completion failed")
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}

	out := fromOpenAIMessage(resp.Choices[0].Message)
	out.ResponseMeta = &schema.ResponseMeta{
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	return out, nil
}

// Stream satisfies the eino interface; the pipeline only invokes, so this
// delegates to Generate and wraps the result.
func (m *ChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func lowerTools(tools []*schema.ToolInfo) ([]openai.Tool, error) {
	out := make([]openai.Tool, 0, len(tools))
	for _, ti := range tools {
		if ti == nil {
			continue
		}
		var params any
		if ti.ParamsOneOf != nil {
			sc, err := ti.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return nil, fmt.Errorf("lower tool %q params: %w", ti.Name, err)
			}
			params = sc
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ti.Name,
				Description: ti.Desc,
				Parameters:  params,
			},
		})
	}
	return out, nil
}

func toOpenAIMessages(in []*schema.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(in))
	for _, m := range in {
		if m == nil {
			continue
		}
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) *schema.Message {
	out := &schema.Message{
		Role:    schema.Assistant,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}

var _ einomodel.ToolCallingChatModel = (*ChatModel)(nil)
