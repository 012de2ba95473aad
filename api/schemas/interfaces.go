// api/schemas/interfaces.go
package schemas

import "context"

// Role names the part a model call plays in a workflow, which lets a router
// send composing and judging to different models or providers.
type Role string

const (
	RoleCompose Role = "compose" // Drafts a candidate artifact.
	RoleJudge   Role = "judge"   // Evaluates a candidate for publish readiness.
	RoleExtract Role = "extract" // Pulls structured content out of fetched pages.
)

// GenerationOptions controls one model call.
type GenerationOptions struct {
	Model       string  `json:"model"`       // Provider model identifier. Empty selects the client default.
	Temperature float64 `json:"temperature"` // Sampling temperature in [0, 2].
}

// CompletionRequest is everything a generation client needs for a single
// structured call.
type CompletionRequest struct {
	SystemPrompt string            `json:"system_prompt"` // Persona and task instructions.
	UserPrompt   string            `json:"user_prompt"`   // The concrete input for this call.
	Schema       Schema            `json:"-"`             // Declared shape of the expected reply.
	Role         Role              `json:"role"`
	Options      GenerationOptions `json:"options"`
}

// LLMClient abstracts a generation service that returns structured output.
// Implementations perform exactly one network call per Generate and are safe
// for concurrent use.
type LLMClient interface {
	// Generate sends req and returns the unprocessed reply.
	Generate(ctx context.Context, req CompletionRequest) (RawCompletion, error)
	// Close releases any resources held by the client.
	Close() error
}
