// internal/worker/worker.go
package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/agent"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/worker/adapters"
)

// Dependencies are the collaborators the default task handlers are built from.
type Dependencies struct {
	LLM     schemas.LLMClient
	Fetcher agent.Fetcher
	// Clock overrides time.Now for the simulated scheduler.
	Clock func() time.Time
}

// MonolithicWorker runs tasks in-process.
// It serves as a central dispatcher, routing each task to the handler
// registered under its name.
type MonolithicWorker struct {
	cfg      config.Interface
	logger   *zap.Logger
	deps     Dependencies
	registry map[schemas.TaskName]adapters.Handler
}

// Option is a function that configures a MonolithicWorker.
type Option func(*MonolithicWorker)

// WithHandlers replaces the default handler set.
// This is primarily used for testing to swap real agents for stubs.
func WithHandlers(handlers ...adapters.Handler) Option {
	return func(w *MonolithicWorker) {
		for _, h := range handlers {
			w.registry[h.Name()] = h
		}
	}
}

// NewMonolithicWorker initializes and returns a new worker instance.
func NewMonolithicWorker(cfg config.Interface, logger *zap.Logger, deps Dependencies, opts ...Option) (*MonolithicWorker, error) {
	w := &MonolithicWorker{
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "worker")),
		deps:     deps,
		registry: make(map[schemas.TaskName]adapters.Handler),
	}

	for _, opt := range opts {
		opt(w)
	}

	if len(w.registry) == 0 {
		if err := w.registerAdapters(); err != nil {
			return nil, fmt.Errorf("failed to register default worker adapters: %w", err)
		}
	}

	return w, nil
}

// registerAdapters builds the map of task names to their handlers.
func (w *MonolithicWorker) registerAdapters() error {
	if w.deps.LLM == nil {
		return fmt.Errorf("an llm client is required")
	}
	if w.deps.Fetcher == nil {
		return fmt.Errorf("a page fetcher is required")
	}

	agentCfg := w.cfg.Agent()
	var linkedInOpts []agent.LinkedInOption
	if w.deps.Clock != nil {
		linkedInOpts = append(linkedInOpts, agent.WithClock(w.deps.Clock))
	}

	twitter := agent.NewTwitter(w.deps.LLM, agentCfg, w.logger)
	researcher := agent.NewResearcher(w.deps.LLM, w.deps.Fetcher, w.logger)
	tasks := adapters.Tasks{
		LinkedIn:   agent.NewLinkedIn(w.deps.LLM, w.logger, linkedInOpts...),
		Twitter:    twitter,
		Researcher: researcher,
		Marketer:   agent.NewMarketer(researcher, twitter, agentCfg, w.logger),
	}

	for _, h := range adapters.Defaults(agentCfg, tasks) {
		w.registry[h.Name()] = h
	}

	w.logger.Info("Default task adapters registered", zap.Int("count", len(w.registry)))
	return nil
}

// Tasks lists the registered task names in sorted order.
func (w *MonolithicWorker) Tasks() []schemas.TaskName {
	names := make([]schemas.TaskName, 0, len(w.registry))
	for name := range w.registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Has reports whether a handler is registered for name.
func (w *MonolithicWorker) Has(name schemas.TaskName) bool {
	_, ok := w.registry[name]
	return ok
}

// ProcessTask runs a single task and wraps its outcome in a TaskResult.
// Failures are reported in the result, never returned.
func (w *MonolithicWorker) ProcessTask(ctx context.Context, task schemas.Task) schemas.TaskResult {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	result := schemas.TaskResult{
		TaskID:    task.ID,
		Name:      task.Name,
		StartedAt: time.Now().UTC(),
	}
	logger := w.logger.With(zap.String("task_id", task.ID), zap.String("task", string(task.Name)))

	handler, exists := w.registry[task.Name]
	if !exists {
		err := schemas.NewValidationError("name", fmt.Sprintf("no adapter registered for task '%s'", task.Name))
		result.Error = schemas.ToPayload(err)
		logger.Warn("Unknown task requested")
		return result
	}

	if timeout := w.cfg.Worker().TaskTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug("Dispatching task to adapter")
	output, err := handler.Handle(ctx, task.Payload)
	result.Duration = time.Since(result.StartedAt)

	if err != nil {
		result.Error = schemas.ToPayload(err)
		logger.Warn("Task failed",
			zap.String("kind", string(result.Error.Kind)),
			zap.Duration("duration", result.Duration),
			zap.Error(err))
		return result
	}

	result.Output = output
	logger.Info("Task finished", zap.Duration("duration", result.Duration))
	return result
}

// ProcessBatch runs tasks with bounded concurrency. Results keep the order of
// the input; a failed task does not stop the others.
func (w *MonolithicWorker) ProcessBatch(ctx context.Context, tasks []schemas.Task) []schemas.TaskResult {
	results := make([]schemas.TaskResult, len(tasks))

	limit := w.cfg.Worker().Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range tasks {
		g.Go(func() error {
			results[i] = w.ProcessTask(gctx, tasks[i])
			return nil
		})
	}
	_ = g.Wait()

	w.logger.Info("Batch finished", zap.Int("tasks", len(tasks)), zap.Int("concurrency", limit))
	return results
}
