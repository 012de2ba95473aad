// internal/llmclient/tracing.go
package llmclient

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

var llmTracer = otel.Tracer("github.com/xkilldash9x/quill-cli/internal/llmclient")

// Traced records one span per generation call.
type Traced struct {
	next   schemas.LLMClient
	name   string
	tracer trace.Tracer
}

// NewTraced wraps next. A nil tracer selects the global provider's tracer.
func NewTraced(next schemas.LLMClient, name string, tracer trace.Tracer) *Traced {
	if tracer == nil {
		tracer = llmTracer
	}
	return &Traced{next: next, name: name, tracer: tracer}
}

func (t *Traced) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	ctx, span := t.tracer.Start(ctx, "llm.generate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.client", t.name),
		attribute.String("llm.role", string(req.Role)),
		attribute.String("llm.model", req.Options.Model),
		attribute.String("llm.schema", req.Schema.Name),
		attribute.Float64("llm.temperature", req.Options.Temperature),
	)

	raw, err := t.next.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(schemas.KindOf(err)))
		return nil, err
	}
	if raw != nil {
		span.SetAttributes(attribute.String("llm.completion_shape", string(raw.Shape())))
	}
	return raw, nil
}

func (t *Traced) Close() error { return t.next.Close() }
