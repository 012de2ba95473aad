// internal/llmclient/openai_responses.go
package llmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// ResponsesClient implements schemas.LLMClient on top of the OpenAI Responses
// API. Replies come back as an ordered list of output content blocks.
type ResponsesClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewResponsesClient initializes the client.
func NewResponsesClient(cfg config.LLMModelConfig, logger *zap.Logger) (*ResponsesClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API Key is required")
	}
	return &ResponsesClient{
		client: openai.NewClient(openAIOptions(cfg)...),
		model:  cfg.Model,
		logger: logger.Named("llm_client.openai_responses"),
	}, nil
}

// Generate sends one responses request with a json_schema text format.
func (c *ResponsesClient) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	const op = "llmclient.responses"
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := c.buildParams(req)

	startTime := time.Now()
	resp, err := c.client.Responses.New(ctx, params)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Warn("Responses call failed", zap.String("schema", req.Schema.Name), zap.Duration("duration", duration), zap.Error(err))
		return nil, classify(ctx, op, err)
	}
	if resp.Error.Message != "" {
		return nil, schemas.NewServiceError(op, 0, fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message), nil)
	}

	c.logger.Debug("LLM generation complete (OpenAI responses)",
		zap.String("model", params.Model),
		zap.String("role", string(req.Role)),
		zap.String("status", string(resp.Status)),
		zap.Duration("duration", duration),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)

	return outputList(resp), nil
}

// outputList flattens every message item of the reply into content blocks,
// keeping their order.
func outputList(resp *responses.Response) schemas.OutputList {
	var out schemas.OutputList
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			out.Blocks = append(out.Blocks, schemas.ContentBlock{
				Type:    content.Type,
				Text:    content.Text,
				Refusal: content.Refusal,
			})
		}
	}
	return out
}

func (c *ResponsesClient) buildParams(req schemas.CompletionRequest) responses.ResponseNewParams {
	model := req.Options.Model
	if model == "" {
		model = c.model
	}

	format := &responses.ResponseFormatTextJSONSchemaConfigParam{
		Name:   req.Schema.Name,
		Schema: req.Schema.JSONSchema(),
		Strict: openai.Bool(req.Schema.Strict()),
	}
	if req.Schema.Description != "" {
		format.Description = openai.String(req.Schema.Description)
	}

	params := responses.ResponseNewParams{
		Model:       model,
		Input:       responses.ResponseNewParamsInputUnion{OfString: openai.String(req.UserPrompt)},
		Temperature: openai.Float(req.Options.Temperature),
		Store:       openai.Bool(false),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{OfJSONSchema: format},
		},
	}
	if req.SystemPrompt != "" {
		params.Instructions = openai.String(req.SystemPrompt)
	}
	return params
}

// Close is a no-op; the SDK holds no resources that need releasing.
func (c *ResponsesClient) Close() error { return nil }
