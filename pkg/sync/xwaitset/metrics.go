package xwaitset

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentationVersion 埋点版本号，trace 与 metrics 共用
const instrumentationVersion = "0.1.0"

// 设计决策: 指标前缀使用 "xwaitset.*" 而非 "waitkit.xwaitset.*"。
// 项目各包自治命名，与 OTel Meter scope name 保持一致（Meter("xwaitset")），
// 避免与 scope 名称产生冗余嵌套。如需统一命名空间，应在采集端处理。
const (
	// metricNameAttachTotal 注册次数计数器
	metricNameAttachTotal = "xwaitset.attach.total"
	// metricNameDetachTotal 注销次数计数器
	metricNameDetachTotal = "xwaitset.detach.total"
	// metricNameSignalTotal 生产者 Signal 次数计数器
	metricNameSignalTotal = "xwaitset.signal.total"
	// metricNameTimeoutTotal TimedWait 超时次数计数器
	metricNameTimeoutTotal = "xwaitset.wait.timeout.total"
	// metricNameWaitDuration Wait 阻塞耗时直方图
	metricNameWaitDuration = "xwaitset.wait.duration"
	// metricNameBatchSize Wait 返回批大小直方图
	metricNameBatchSize = "xwaitset.wait.batch_size"
)

// attrAttached attach 结果标签（true=成功，false=容量已满）
const attrAttached = "xwaitset.attached"

// durationBuckets 耗时直方图的桶边界
var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}

// Metrics WaitSet 指标收集器
type Metrics struct {
	meter        metric.Meter
	attachTotal  metric.Int64Counter
	detachTotal  metric.Int64Counter
	signalTotal  metric.Int64Counter
	timeoutTotal metric.Int64Counter
	waitDuration metric.Float64Histogram
	batchSize    metric.Int64Histogram
}

// NewMetrics 创建指标收集器。
// 如果 meterProvider 为 nil，返回 (nil, nil)，所有 record 方法对
// nil 接收者都是安全的空操作。
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	m := &Metrics{}
	m.meter = meterProvider.Meter("xwaitset",
		metric.WithInstrumentationVersion(instrumentationVersion),
	)

	var err error
	if m.attachTotal, err = m.meter.Int64Counter(metricNameAttachTotal,
		metric.WithDescription("触发器注册次数"), metric.WithUnit("{attach}")); err != nil {
		return nil, err
	}
	if m.detachTotal, err = m.meter.Int64Counter(metricNameDetachTotal,
		metric.WithDescription("触发器注销次数"), metric.WithUnit("{detach}")); err != nil {
		return nil, err
	}
	if m.signalTotal, err = m.meter.Int64Counter(metricNameSignalTotal,
		metric.WithDescription("生产者 Signal 次数"), metric.WithUnit("{signal}")); err != nil {
		return nil, err
	}
	if m.timeoutTotal, err = m.meter.Int64Counter(metricNameTimeoutTotal,
		metric.WithDescription("TimedWait 超时次数"), metric.WithUnit("{timeout}")); err != nil {
		return nil, err
	}
	if m.waitDuration, err = m.meter.Float64Histogram(metricNameWaitDuration,
		metric.WithDescription("Wait 阻塞耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	if m.batchSize, err = m.meter.Int64Histogram(metricNameBatchSize,
		metric.WithDescription("Wait 返回批大小"), metric.WithUnit("{trigger}")); err != nil {
		return nil, err
	}

	return m, nil
}

// 设计决策: record 方法对 nil 接收者安全，调用点无需判空——
// 未配置 MeterProvider 时 NewMetrics 返回 nil，热路径只多一次指针判断。

// recordAttach 记录注册结果
func (m *Metrics) recordAttach(ctx context.Context, attached bool) {
	if m == nil {
		return
	}
	m.attachTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool(attrAttached, attached),
	))
}

// recordDetach 记录注销
func (m *Metrics) recordDetach(ctx context.Context) {
	if m == nil {
		return
	}
	m.detachTotal.Add(ctx, 1)
}

// recordSignal 记录 Signal
func (m *Metrics) recordSignal(ctx context.Context) {
	if m == nil {
		return
	}
	m.signalTotal.Add(ctx, 1)
}

// recordWait 记录一次 Wait/TimedWait 的结果
func (m *Metrics) recordWait(ctx context.Context, batch int, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.waitDuration.Record(ctx, duration.Seconds())
	if errors.Is(err, ErrTimeout) {
		m.timeoutTotal.Add(ctx, 1)
		return
	}
	if err == nil {
		m.batchSize.Record(ctx, int64(batch))
	}
}
