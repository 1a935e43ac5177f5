package xwaitset

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/waitkit/pkg/observability/xlog"
)

const (
	// defaultCapacity 默认触发器表容量
	defaultCapacity = 128
	// maxCapacity 最大触发器表容量
	maxCapacity = 1 << 16 // 65536
)

// =============================================================================
// WaitSet 配置选项
// =============================================================================

// Option WaitSet 配置选项函数
type Option func(*options)

// options WaitSet 内部配置
type options struct {
	capacity       int
	logger         xlog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metrics        *Metrics
	tracer         trace.Tracer
}

// defaultOptions 返回默认配置
func defaultOptions() *options {
	return &options{
		capacity: defaultCapacity,
	}
}

// WithCapacity 设置触发器表容量。
// 容量在构造时固定，之后不再扩容：注册第 n+1 个触发器时 Attach
// 返回 [ErrCapacityExceeded]，这把 Wait 的扫描成本和内存占用约束在 O(n)。
// 必须在 [1, 65536] 范围内，否则 New 返回 [ErrInvalidCapacity]。默认 128。
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger 设置日志记录器。
// 用于记录 Attach/Detach/Close 等生命周期事件，不设置则不记录。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider。
// 用于收集 attach/detach/signal 计数与 wait 耗时、批大小直方图。
// 如果不设置，不会收集指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider 设置 OpenTelemetry TracerProvider。
// 用于为 Wait/TimedWait 创建 span。
// 如果不设置，会使用全局 TracerProvider（otel.GetTracerProvider()）。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// validate 校验配置并完成派生字段初始化
func (o *options) validate() error {
	if o.capacity <= 0 || o.capacity > maxCapacity {
		return fmt.Errorf("%w: must be in [1, %d], got %d",
			ErrInvalidCapacity, maxCapacity, o.capacity)
	}
	return nil
}

// =============================================================================
// Attach 配置选项
// =============================================================================

// AttachOption 单次注册的配置选项函数
type AttachOption func(*attachOptions)

// attachOptions 单次注册的内部配置
type attachOptions struct {
	groupID  uint64
	callback func()
	onDetach func()
	latch    *Latch
}

// defaultAttachOptions 返回默认注册配置
func defaultAttachOptions() *attachOptions {
	return &attachOptions{}
}

// WithGroupID 设置触发器的分组 ID。
// 不要求唯一，仅供消费者侧对 Wait 结果做分类。默认 0。
func WithGroupID(id uint64) AttachOption {
	return func(o *attachOptions) {
		o.groupID = id
	}
}

// WithCallback 设置分发回调。
// 回调在 Attach 处以闭包绑定具体 origin，消费者通过
// [TriggerState.Invoke] 调用，无需向下转型。
// 回调必须是非阻塞的全函数，且不得回调进 WaitSet 本身。
func WithCallback(cb func()) AttachOption {
	return func(o *attachOptions) {
		o.callback = cb
	}
}

// WithDetachHook 设置注销钩子。
// 槽位被 Detach 或 Close 释放时调用（在表锁之外），origin 应在钩子里
// 清空自己保存的 Handle，防止后续对已死槽位的 Signal 调用。
// 钩子必须是非阻塞的全函数，且不得回调进 WaitSet 本身。
func WithDetachHook(fn func()) AttachOption {
	return func(o *attachOptions) {
		o.onDetach = fn
	}
}
