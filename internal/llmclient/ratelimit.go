// internal/llmclient/ratelimit.go
package llmclient

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// RateLimited throttles calls to an underlying client. Waiting for a token
// honours cancellation, so a canceled invocation never reaches the network.
type RateLimited struct {
	next    schemas.LLMClient
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a token bucket of the given rate (calls per
// second) and burst. A burst below one is raised to one.
func NewRateLimited(next schemas.LLMClient, perSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *RateLimited) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Wait also fails when the deadline would pass before a token frees up.
		return nil, schemas.NewTransportError("llmclient.ratelimit", err)
	}
	return r.next.Generate(ctx, req)
}

func (r *RateLimited) Close() error { return r.next.Close() }
