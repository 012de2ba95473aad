// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// GeminiClient implements schemas.LLMClient for the Google Gemini API through
// the genai SDK. Candidate parts are surfaced as an output list.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient initializes the client.
func NewGeminiClient(ctx context.Context, cfg config.LLMModelConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Gemini model name is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions.BaseURL = cfg.Endpoint
	}
	if cfg.APITimeout > 0 {
		cc.HTTPOptions.Timeout = genai.Ptr(cfg.APITimeout)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger.Named("llm_client.gemini"),
	}, nil
}

// Generate sends one GenerateContent call constrained to the request schema.
func (c *GeminiClient) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	const op = "llmclient.gemini"
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := req.Options.Model
	if model == "" {
		model = c.model
	}

	startTime := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.UserPrompt), c.buildConfig(req))
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Warn("Gemini generation failed", zap.String("schema", req.Schema.Name), zap.Duration("duration", duration), zap.Error(err))
		return nil, classify(ctx, op, err)
	}

	fields := []zap.Field{
		zap.String("model", model),
		zap.String("role", string(req.Role)),
		zap.Duration("duration", duration),
	}
	if resp.UsageMetadata != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("completion_tokens", resp.UsageMetadata.CandidatesTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}
	c.logger.Debug("LLM generation complete (Gemini)", fields...)

	return candidateBlocks(resp), nil
}

func (c *GeminiClient) buildConfig(req schemas.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(float32(req.Options.Temperature)),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: req.Schema.JSONSchema(),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	return cfg
}

// candidateBlocks takes the parts of the first candidate. Thought parts are
// skipped and a safety block is reported as a refusal so the extractor can
// explain the empty reply.
func candidateBlocks(resp *genai.GenerateContentResponse) schemas.OutputList {
	var out schemas.OutputList
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
			out.Blocks = append(out.Blocks, schemas.ContentBlock{
				Type:    "refusal",
				Refusal: fmt.Sprintf("generation stopped (Reason: %s)", candidate.FinishReason),
			})
		}
		return out
	}
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		out.Blocks = append(out.Blocks, schemas.ContentBlock{Type: "text", Text: part.Text})
	}
	return out
}

// Close is a no-op; the genai client holds no resources that need releasing.
func (c *GeminiClient) Close() error { return nil }
