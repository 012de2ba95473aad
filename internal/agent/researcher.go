// internal/agent/researcher.go
package agent

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/llmutil"
)

// Researcher reads web pages into structured research results.
type Researcher struct {
	llm     schemas.LLMClient
	fetcher Fetcher
	logger  *zap.Logger
}

func NewResearcher(llm schemas.LLMClient, fetcher Fetcher, logger *zap.Logger) *Researcher {
	return &Researcher{llm: llm, fetcher: fetcher, logger: logger.Named("researcher")}
}

// ReadWebsite fetches req.URL and asks the model to extract its main content
// as Markdown.
func (r *Researcher) ReadWebsite(ctx context.Context, req schemas.ReadWebsiteRequest) (schemas.ResearchResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.ResearchResult{}, err
	}

	r.logger.Info("Fetching URL",
		zap.String("url", req.URL),
		zap.Float64("timeout_seconds", req.TimeoutSeconds),
		zap.String("model", req.Model),
	)
	timeout := time.Duration(req.TimeoutSeconds * float64(time.Second))
	page, err := r.fetcher.Fetch(ctx, req.URL, timeout, req.MaxCharacters)
	if err != nil {
		return schemas.ResearchResult{}, err
	}
	if strings.TrimSpace(page.Text) == "" {
		return schemas.ResearchResult{}, schemas.NewEmptyResponse("fetched page has no readable content")
	}

	raw, err := r.llm.Generate(ctx, schemas.CompletionRequest{
		SystemPrompt: researchSystemPrompt,
		UserPrompt:   researchUserPrompt(req.URL, page.Text),
		Schema:       schemas.ResearchSchema,
		Role:         schemas.RoleExtract,
		Options:      schemas.GenerationOptions{Model: req.Model, Temperature: req.Temperature},
	})
	if err != nil {
		return schemas.ResearchResult{}, err
	}
	result, err := llmutil.Extract[schemas.ResearchResult](raw, schemas.ResearchSchema)
	if err != nil {
		return schemas.ResearchResult{}, err
	}
	result.URL = req.URL
	if result.Summary != nil && strings.TrimSpace(*result.Summary) == "" {
		result.Summary = nil
	}
	return result, nil
}
