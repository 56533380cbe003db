package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CompileSpanName names the span around the first compile of a member.
const CompileSpanName = "fastreflect.compile"

// StartCompileSpan starts the span around the compile of one member.
func StartCompileSpan(
	ctx context.Context,
	tracer trace.Tracer,
	kind MemberKind,
	member string,
	target string,
	contextID uint64,
) (context.Context, trace.Span) {
	return tracer.Start(ctx, CompileSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			Kind(kind),
			Member(member),
			TargetType(target),
			ContextID(contextID),
		),
	)
}

// EndSpan records err, if any, and ends the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
