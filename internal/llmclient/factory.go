// internal/llmclient/factory.go
package llmclient

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// NewClient is a factory function that builds every configured client once and
// returns an LLMRouter dispatching workflow roles onto them.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm configuration: %w", err)
	}

	// Build clients in a stable order so failures are reported deterministically.
	names := make([]string, 0, len(cfg.Clients))
	for name := range cfg.Clients {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make(map[string]schemas.LLMClient, len(names))
	needed := map[string]bool{cfg.DefaultClient: true}
	for _, name := range cfg.Roles {
		needed[name] = true
	}
	for _, name := range names {
		if !needed[name] {
			continue
		}
		client, err := NewModelClient(ctx, name, cfg.Clients[name], cfg.Tracing, logger)
		if err != nil {
			closeAll(built)
			return nil, fmt.Errorf("failed to initialize llm client %q: %w", name, err)
		}
		built[name] = client
	}

	byRole := make(map[schemas.Role]schemas.LLMClient, len(cfg.Roles))
	for role, name := range cfg.Roles {
		byRole[schemas.Role(role)] = built[name]
	}
	router, err := NewLLMRouter(logger, built[cfg.DefaultClient], byRole)
	if err != nil {
		closeAll(built)
		return nil, err
	}
	return router, nil
}

// NewModelClient creates a single provider client from its configuration and
// applies the rate limiting and tracing decorators it asks for.
func NewModelClient(ctx context.Context, name string, mc config.LLMModelConfig, tracing bool, logger *zap.Logger) (schemas.LLMClient, error) {
	var (
		client schemas.LLMClient
		err    error
	)

	// Using constants defined in config package to avoid magic strings.
	switch mc.Provider {
	case config.ProviderOpenAI:
		if mc.API == config.APIResponses {
			client, err = NewResponsesClient(mc, logger)
		} else {
			client, err = NewChatClient(mc, logger)
		}
	case config.ProviderGemini:
		client, err = NewGeminiClient(ctx, mc, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s, %s]", mc.Provider, config.ProviderOpenAI, config.ProviderGemini)
	}
	if err != nil {
		return nil, err
	}

	if mc.RateLimit > 0 {
		client = NewRateLimited(client, mc.RateLimit, mc.Burst)
	}
	if tracing {
		client = NewTraced(client, name, nil)
	}
	return client, nil
}

func closeAll(clients map[string]schemas.LLMClient) {
	for _, c := range clients {
		_ = c.Close()
	}
}
