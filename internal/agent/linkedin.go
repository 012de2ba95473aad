// internal/agent/linkedin.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/assembly"
	"github.com/xkilldash9x/quill-cli/internal/llmutil"
)

// SimulatedStatus is the status of every simulated publication.
const SimulatedStatus = "simulated"

// LinkedIn writes LinkedIn posts and simulates their publication.
type LinkedIn struct {
	llm    schemas.LLMClient
	logger *zap.Logger
	now    func() time.Time
}

// LinkedInOption customizes a LinkedIn task set.
type LinkedInOption func(*LinkedIn)

// WithClock replaces the wall clock used for unscheduled simulations.
func WithClock(now func() time.Time) LinkedInOption {
	return func(l *LinkedIn) { l.now = now }
}

func NewLinkedIn(llm schemas.LLMClient, logger *zap.Logger, opts ...LinkedInOption) *LinkedIn {
	l := &LinkedIn{
		llm:    llm,
		logger: logger.Named("linkedin"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreatePost generates a post, validates it against PostSchema and renders it.
func (l *LinkedIn) CreatePost(ctx context.Context, req schemas.PostRequest) (schemas.PostResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.PostResult{}, err
	}

	raw, err := l.llm.Generate(ctx, schemas.CompletionRequest{
		SystemPrompt: postSystemPrompt,
		UserPrompt:   postUserPrompt(req),
		Schema:       schemas.PostSchema,
		Role:         schemas.RoleCompose,
		Options:      schemas.GenerationOptions{Model: req.Model, Temperature: req.Temperature},
	})
	if err != nil {
		return schemas.PostResult{}, err
	}
	post, err := llmutil.Extract[schemas.Post](raw, schemas.PostSchema)
	if err != nil {
		return schemas.PostResult{}, err
	}
	post.Hashtags = capHashtags(post.Hashtags, req.IncludeHashtags, req.MaxHashtags)

	result := schemas.PostResult{
		Post:        post,
		Rendered:    assembly.RenderPost(post),
		Tone:        req.Tone,
		Audience:    req.Audience,
		Model:       req.Model,
		Temperature: req.Temperature,
	}
	l.logger.Info("Generated LinkedIn post", zap.String("headline", post.Headline), zap.String("model", req.Model))
	return result, nil
}

// SimulatePost records a publication without sending anything. The schedule
// is normalized to UTC; an absent schedule means now.
func (l *LinkedIn) SimulatePost(ctx context.Context, req schemas.SimulateRequest) (schemas.SimulationResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.SimulationResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return schemas.SimulationResult{}, err
	}

	scheduled := l.now().UTC()
	if s := strings.TrimSpace(req.Schedule); s != "" {
		t, err := ParseSchedule(s)
		if err != nil {
			return schemas.SimulationResult{}, err
		}
		scheduled = t
	}

	result := schemas.SimulationResult{
		Post:          req.Post,
		ScheduledTime: scheduled,
		Channel:       req.Channel,
		Status:        SimulatedStatus,
	}
	l.logger.Info("Simulated posting", zap.String("channel", req.Channel), zap.Time("scheduled_time", scheduled))
	return result, nil
}

// Layouts with an explicit offset, tried first.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Layouts without an offset; such times are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseSchedule parses an ISO8601 timestamp and returns it in UTC.
func ParseSchedule(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, schemas.NewValidationError("schedule", fmt.Sprintf("%q must be a valid ISO8601 datetime string", s))
}
