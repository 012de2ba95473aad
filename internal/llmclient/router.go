// internal/llmclient/router.go
package llmclient

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// LLMRouter implements the LLMClient interface and routes requests by role.
type LLMRouter struct {
	logger   *zap.Logger
	fallback schemas.LLMClient
	clients  map[schemas.Role]schemas.LLMClient
	// owned holds every distinct client so Close releases each exactly once.
	owned []schemas.LLMClient
}

// NewLLMRouter creates a new router. Requests whose role has no entry in
// byRole go to fallback.
func NewLLMRouter(logger *zap.Logger, fallback schemas.LLMClient, byRole map[schemas.Role]schemas.LLMClient) (*LLMRouter, error) {
	if fallback == nil {
		return nil, fmt.Errorf("a fallback client must be provided")
	}

	r := &LLMRouter{
		logger:   logger.Named("llm_router"),
		fallback: fallback,
		clients:  make(map[schemas.Role]schemas.LLMClient, len(byRole)),
		owned:    []schemas.LLMClient{fallback},
	}
	for role, client := range byRole {
		if client == nil {
			return nil, fmt.Errorf("nil client configured for role: %s", role)
		}
		r.clients[role] = client
		r.own(client)
	}
	return r, nil
}

func (r *LLMRouter) own(client schemas.LLMClient) {
	for _, c := range r.owned {
		if c == client {
			return
		}
	}
	r.owned = append(r.owned, client)
}

// Generate selects the client configured for the request's role.
func (r *LLMRouter) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	client, ok := r.clients[req.Role]
	if !ok {
		client = r.fallback
	}
	r.logger.Debug("Routing LLM request", zap.String("role", string(req.Role)), zap.Bool("fallback", !ok))
	return client.Generate(ctx, req)
}

// Close closes every underlying client once.
func (r *LLMRouter) Close() error {
	var errs []error
	for _, c := range r.owned {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
