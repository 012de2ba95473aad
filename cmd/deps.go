// cmd/deps.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/agent"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/fetch"
	"github.com/xkilldash9x/quill-cli/internal/llmclient"
	"github.com/xkilldash9x/quill-cli/internal/observability"
	"github.com/xkilldash9x/quill-cli/internal/worker"
)

// Function variables for dependency injection in tests.
var (
	newLLMClient = llmclient.NewClient
	newFetcher   = func(cfg config.AgentConfig, logger *zap.Logger) agent.Fetcher {
		return fetch.NewHTTPFetcher(logger, fetch.WithUserAgent(cfg.Research.UserAgent))
	}
)

// offlineClient stands in when no generation client could be built, so tasks
// that never call a model still run. Generation fails with the init error.
type offlineClient struct {
	err error
}

func (c offlineClient) Generate(context.Context, schemas.CompletionRequest) (schemas.RawCompletion, error) {
	return nil, c.err
}

func (c offlineClient) Close() error { return nil }

// buildWorker wires the generation client, fetcher and worker for one
// command invocation. The returned cleanup closes the client.
func buildWorker(cmd *cobra.Command) (*worker.MonolithicWorker, func(), error) {
	cfg, err := configFrom(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := observability.GetLogger()

	llm, err := newLLMClient(cmd.Context(), cfg.LLM(), logger)
	if err != nil {
		logger.Debug("Generation client unavailable", zap.Error(err))
		llm = offlineClient{err: fmt.Errorf("generation client unavailable: %w", err)}
	}

	w, err := worker.NewMonolithicWorker(cfg, logger, worker.Dependencies{
		LLM:     llm,
		Fetcher: newFetcher(cfg.Agent(), logger),
	})
	if err != nil {
		_ = llm.Close()
		return nil, nil, err
	}
	return w, func() { _ = llm.Close() }, nil
}
