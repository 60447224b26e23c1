package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("gabaychat")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("gabaychat")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceClientFunction starts a new span for an upstream client call.
func TraceClientFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "client", functionName, attributes...)
}

// TraceWidgetFunction starts a new span for a widget service function.
func TraceWidgetFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "widget", functionName, attributes...)
}

// TraceSettingsFunction starts a new span for a settings service function.
func TraceSettingsFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "settings", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceI18nFunction starts a new span for a localization function.
func TraceI18nFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "i18n", functionName, attributes...)
}

// AttributeLanguage returns a tracing attribute for a language code.
func AttributeLanguage(lang string) attribute.KeyValue {
	return attribute.String("language", lang)
}

// AttributeTargetLanguage returns a tracing attribute for a translation target.
func AttributeTargetLanguage(lang string) attribute.KeyValue {
	return attribute.String("translation.target_language", lang)
}

// AttributeSourceLanguage returns a tracing attribute for a translation source.
func AttributeSourceLanguage(lang string) attribute.KeyValue {
	return attribute.String("translation.source_language", lang)
}

// AttributeTextLength returns a tracing attribute for a text length.
func AttributeTextLength(n int) attribute.KeyValue {
	return attribute.Int("translation.text_length", n)
}

// AttributeMessageID returns a tracing attribute for a message id.
func AttributeMessageID(id string) attribute.KeyValue {
	return attribute.String("message.id", id)
}

// AttributeEndpoint returns a tracing attribute for an upstream endpoint path.
func AttributeEndpoint(path string) attribute.KeyValue {
	return attribute.String("upstream.endpoint", path)
}

// AttributeSessionID returns a tracing attribute for a widget session id.
func AttributeSessionID(id string) attribute.KeyValue {
	return attribute.String("session.id", id)
}
