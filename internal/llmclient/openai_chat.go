// internal/llmclient/openai_chat.go
package llmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// ChatClient implements schemas.LLMClient on top of the OpenAI Chat
// Completions API. Replies come back as a single message content string.
type ChatClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewChatClient initializes the client.
func NewChatClient(cfg config.LLMModelConfig, logger *zap.Logger) (*ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API Key is required")
	}
	return &ChatClient{
		client: openai.NewClient(openAIOptions(cfg)...),
		model:  cfg.Model,
		logger: logger.Named("llm_client.openai_chat"),
	}, nil
}

// openAIOptions builds the SDK options shared by both OpenAI clients. SDK level
// retries are disabled: one Generate is exactly one request.
func openAIOptions(cfg config.LLMModelConfig) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.APITimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.APITimeout))
	}
	return opts
}

// Generate sends one chat completion request with a json_schema response format.
func (c *ChatClient) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	const op = "llmclient.chat"
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := c.buildParams(req)

	startTime := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Warn("Chat completion failed", zap.String("schema", req.Schema.Name), zap.Duration("duration", duration), zap.Error(err))
		return nil, classify(ctx, op, err)
	}

	c.logger.Debug("LLM generation complete (OpenAI chat)",
		zap.String("model", params.Model),
		zap.String("role", string(req.Role)),
		zap.Duration("duration", duration),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 {
		// Left for the extractor to classify as an empty response.
		return schemas.MessageContent{}, nil
	}
	msg := resp.Choices[0].Message
	return schemas.MessageContent{Content: msg.Content, Refusal: msg.Refusal}, nil
}

func (c *ChatClient) buildParams(req schemas.CompletionRequest) openai.ChatCompletionNewParams {
	model := req.Options.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	jsonSchema := shared.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   req.Schema.Name,
		Schema: req.Schema.JSONSchema(),
		Strict: openai.Bool(req.Schema.Strict()),
	}
	if req.Schema.Description != "" {
		jsonSchema.Description = openai.String(req.Schema.Description)
	}

	return openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    messages,
		Temperature: openai.Float(req.Options.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{JSONSchema: jsonSchema},
		},
	}
}

// Close is a no-op; the SDK holds no resources that need releasing.
func (c *ChatClient) Close() error { return nil }
