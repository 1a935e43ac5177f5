package xwaitset

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName 追踪器名称
const tracerName = "xwaitset"

// Span 操作名称
const (
	spanNameWait      = "xwaitset.Wait"
	spanNameTimedWait = "xwaitset.TimedWait"
)

// Span 属性名称
const (
	attrBatchSize = "xwaitset.batch_size"
	attrTimeoutMs = "xwaitset.timeout_ms"
)

// getTracer 获取 tracer 实例。
// 如果配置了 TracerProvider 则使用它，否则使用全局默认。
func getTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// startSpan 创建新的 span。
// 如果 tracer 为 nil，使用全局 tracer（可能是 noop tracer）。
func startSpan(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, opts...)
}

// setSpanError 设置 span 错误状态
func setSpanError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// setSpanOK 设置 span 成功状态
func setSpanOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}
