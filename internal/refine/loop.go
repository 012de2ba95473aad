// internal/refine/loop.go

// Package refine runs the bounded compose-judge loop: a composer drafts a
// candidate, a judge accepts or rejects it, and a rejection's feedback is
// handed to the next draft until the candidate is accepted or the attempt
// budget runs out.
package refine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// DefaultMaxAttempts is the attempt budget used when none is configured.
const DefaultMaxAttempts = 3

var refineTracer = otel.Tracer("github.com/xkilldash9x/quill-cli/internal/refine")

// State is a step of the loop's state machine.
type State string

const (
	StateComposing State = "composing"
	StateJudging   State = "judging"
	StateAccepted  State = "accepted"
	StateExhausted State = "exhausted"
)

// LoopState is what the composer sees at the start of an attempt. Attempt is
// a zero-based index that runs up to MaxAttempts-1. Previous and Feedback are
// set only after a rejection and always describe the immediately preceding
// attempt.
type LoopState[T any] struct {
	Attempt     int
	MaxAttempts int
	Previous    *T
	Feedback    string
}

// Retrying reports whether this attempt follows a rejection.
func (s LoopState[T]) Retrying() bool { return s.Previous != nil }

// Composer drafts a candidate.
type Composer[T any] interface {
	Compose(ctx context.Context, state LoopState[T]) (T, error)
}

// Judge evaluates a candidate.
type Judge[T any] interface {
	Judge(ctx context.Context, candidate T) (schemas.JudgeVerdict, error)
}

// ComposerFunc adapts a function to Composer.
type ComposerFunc[T any] func(ctx context.Context, state LoopState[T]) (T, error)

func (f ComposerFunc[T]) Compose(ctx context.Context, state LoopState[T]) (T, error) {
	return f(ctx, state)
}

// JudgeFunc adapts a function to Judge.
type JudgeFunc[T any] func(ctx context.Context, candidate T) (schemas.JudgeVerdict, error)

func (f JudgeFunc[T]) Judge(ctx context.Context, candidate T) (schemas.JudgeVerdict, error) {
	return f(ctx, candidate)
}

// Round records one compose-judge exchange. Attempt is the zero-based index.
type Round[T any] struct {
	Attempt   int
	Candidate T
	Verdict   schemas.JudgeVerdict
}

// Outcome is the result of an accepted run.
type Outcome[T any] struct {
	// Candidate is the accepted candidate exactly as the composer returned it.
	Candidate T
	// Attempts counts the rounds run, so it is the accepted index plus one.
	Attempts int
	Verdict   schemas.JudgeVerdict
	History   []Round[T]
}

// Option configures a Loop.
type Option func(*settings)

type settings struct {
	maxAttempts int
	logger      *zap.Logger
	tracer      trace.Tracer
}

// WithMaxAttempts sets the attempt budget. It must be at least one.
func WithMaxAttempts(n int) Option {
	return func(s *settings) { s.maxAttempts = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *settings) { s.tracer = tracer }
}

// Loop coordinates a Composer and a Judge. A Loop holds no per-run state and
// may be shared by concurrent runs.
type Loop[T any] struct {
	composer    Composer[T]
	judge       Judge[T]
	maxAttempts int
	logger      *zap.Logger
	tracer      trace.Tracer
}

// New builds a Loop.
func New[T any](composer Composer[T], judge Judge[T], opts ...Option) (*Loop[T], error) {
	if composer == nil || judge == nil {
		return nil, fmt.Errorf("refine: composer and judge are both required")
	}
	s := settings{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&s)
	}
	if s.maxAttempts < 1 {
		return nil, fmt.Errorf("refine: max attempts must be at least 1, got %d", s.maxAttempts)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.tracer == nil {
		s.tracer = refineTracer
	}
	return &Loop[T]{
		composer:    composer,
		judge:       judge,
		maxAttempts: s.maxAttempts,
		logger:      s.logger.Named("refine"),
		tracer:      s.tracer,
	}, nil
}

// MaxAttempts returns the configured attempt budget.
func (l *Loop[T]) MaxAttempts() int { return l.maxAttempts }

// Run drives the loop to acceptance or exhaustion. Any compose or judge error
// ends the run immediately and is returned unchanged. Exhaustion returns an
// *ExhaustedError.
func (l *Loop[T]) Run(ctx context.Context) (Outcome[T], error) {
	runID := uuid.NewString()
	logger := l.logger.With(zap.String("run_id", runID), zap.Int("max_attempts", l.maxAttempts))

	ctx, span := l.tracer.Start(ctx, "refine.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("refine.run_id", runID),
		attribute.Int("refine.max_attempts", l.maxAttempts),
	)

	var (
		out   Outcome[T]
		state = LoopState[T]{Attempt: 0, MaxAttempts: l.maxAttempts}
	)
	fail := func(err error) (Outcome[T], error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(schemas.KindOf(err)))
		return out, err
	}

	for ; state.Attempt < l.maxAttempts; state.Attempt++ {
		logger.Debug("Loop state transition", zap.Int("attempt", state.Attempt), zap.String("state", string(StateComposing)))
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		candidate, err := l.composer.Compose(ctx, state)
		if err != nil {
			logger.Warn("Compose failed", zap.Int("attempt", state.Attempt), zap.Error(err))
			return fail(err)
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		logger.Debug("Loop state transition", zap.Int("attempt", state.Attempt), zap.String("state", string(StateJudging)))
		verdict, err := l.judge.Judge(ctx, candidate)
		if err != nil {
			logger.Warn("Judge failed", zap.Int("attempt", state.Attempt), zap.Error(err))
			return fail(err)
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		if !verdict.Accepted() && verdict.Feedback == "" {
			logger.Warn("Judge rejected the candidate without feedback, using fallback", zap.Int("attempt", state.Attempt))
		}
		verdict = verdict.Normalize()
		out.History = append(out.History, Round[T]{Attempt: state.Attempt, Candidate: candidate, Verdict: verdict})
		span.AddEvent("refine.round", trace.WithAttributes(
			attribute.Int("refine.attempt", state.Attempt),
			attribute.Bool("refine.accepted", verdict.Accepted()),
		))

		if verdict.Accepted() {
			out.Candidate = candidate
			out.Attempts = state.Attempt + 1
			out.Verdict = verdict
			span.SetAttributes(attribute.Int("refine.attempts", out.Attempts), attribute.String("refine.state", string(StateAccepted)))
			logger.Info("Candidate accepted", zap.Int("attempts", out.Attempts))
			return out, nil
		}

		logger.Info("Candidate rejected", zap.Int("attempt", state.Attempt), zap.String("feedback", verdict.Feedback))
		prev := candidate
		state.Previous = &prev
		state.Feedback = verdict.Feedback
	}

	out.Attempts = l.maxAttempts
	span.SetAttributes(attribute.Int("refine.attempts", l.maxAttempts), attribute.String("refine.state", string(StateExhausted)))
	logger.Warn("Attempt budget exhausted without an accepted candidate")
	return fail(&ExhaustedError[T]{
		Attempts:      l.maxAttempts,
		LastCandidate: *state.Previous,
		LastFeedback:  state.Feedback,
	})
}
