package llm

import (
	"context"
	"fmt"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"

	"github.com/shardforge/worker/config"
)

// Completion is the raw result of one model invocation.
type Completion struct {
	Content     string
	TotalTokens int
	// Truncated is set when the model stopped on its length limit before
	// finishing. The caller treats that as an insufficient-credits outcome,
	// not as a failure.
	Truncated bool
}

// Client wraps an Eino OpenAI chat model configured for single-shot JSON
// completions.
type Client struct {
	chatModel   model.ToolCallingChatModel
	temperature float32
	maxTokens   int
}

func NewClient(cfg *config.Config) (*Client, error) {
	modelCfg := &openaiopts.ChatModelConfig{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
	}
	if cfg.LLM.APIURL != "" {
		modelCfg.BaseURL = cfg.LLM.APIURL
	}
	if cfg.LLM.MaxTokens > 0 {
		maxTokens := cfg.LLM.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}

	chatModel, err := openaiopts.NewChatModel(context.Background(), modelCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Client{
		chatModel:   chatModel,
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
	}, nil
}

// Complete sends a system+user message pair with response_format forced to a
// single JSON object. maxTokens caps the completion; zero falls back to the
// configured default.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (*Completion, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	opts := []model.Option{
		model.WithTemperature(c.temperature),
		model.WithMaxTokens(maxTokens),
		openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{"type": "json_object"},
		}),
	}

	klog.V(6).Infof("llm request: messages=%d maxTokens=%d", len(messages), maxTokens)
	out, err := c.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("empty response from llm")
	}

	completion := &Completion{Content: out.Content}
	if out.ResponseMeta != nil {
		completion.Truncated = out.ResponseMeta.FinishReason == "length"
		if out.ResponseMeta.Usage != nil {
			completion.TotalTokens = out.ResponseMeta.Usage.TotalTokens
		}
	}
	// A length-cut response can arrive with no visible content at all when the
	// token budget runs out early; that is a credit problem, not a failure, so
	// it must reach the caller as a truncated completion.
	if out.Content == "" && !completion.Truncated {
		return nil, fmt.Errorf("empty response from llm")
	}

	klog.V(6).Infof("llm response: contentLength=%d tokens=%d truncated=%v",
		len(out.Content), completion.TotalTokens, completion.Truncated)
	return completion, nil
}
