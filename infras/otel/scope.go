package otel

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Scope wraps one span of a traced operation. Callers obtain it from
// Otel.NewScope and must End it when the operation finishes.
type Scope interface {
	// End closes the underlying span.
	End()
	// TraceError records err on the span and marks the span as failed.
	TraceError(err error)
	// TraceIfError is TraceError guarded for nil, usable in a deferred call
	// against a named error return.
	TraceIfError(err error)
	// AddEvent attaches a point-in-time annotation to the span.
	AddEvent(name string)
	// SetAttribute sets a single span attribute, mapping the Go type onto
	// the matching attribute kind (string for anything unrecognized).
	SetAttribute(key string, value any)
	SetAttributes(attributes map[string]any)
}

type scopeImpl struct {
	span oteltrace.Span
}

func (s *scopeImpl) End() {
	s.span.End()
}

func (s *scopeImpl) TraceError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *scopeImpl) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *scopeImpl) AddEvent(name string) {
	s.span.AddEvent(name)
}

func (s *scopeImpl) SetAttribute(key string, value any) {
	switch val := value.(type) {
	case bool:
		s.span.SetAttributes(attribute.Bool(key, val))
	case string:
		s.span.SetAttributes(attribute.String(key, val))
	case int:
		s.span.SetAttributes(attribute.Int(key, val))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, val))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", val)))
	}
}

func (s *scopeImpl) SetAttributes(attributes map[string]any) {
	for key, value := range attributes {
		s.SetAttribute(key, value)
	}
}

// NewScope wraps an already started span.
func NewScope(span oteltrace.Span) Scope {
	return &scopeImpl{
		span: span,
	}
}
