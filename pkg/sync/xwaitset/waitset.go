package xwaitset

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Handle 是一次注册的不透明令牌，用于 Detach 和 Signal。
//
// 内部为槽位下标 + 代数（generation）：槽位复用后旧令牌的代数不再匹配，
// 因此对过期/未知/重复的 Handle 调用 Detach 或 Signal 是安全的空操作。
// 零值 Handle 永远不会被签发，天然过期。
type Handle struct {
	index uint32
	gen   uint64
}

// slot 触发器表的一个槽位。
// 不变式：槽位要么完全有效（valid=true 且各字段就绪，计入容量），
// 要么完全空闲（零值）。
type slot struct {
	valid     bool
	gen       uint64
	groupID   uint64
	origin    any
	latch     *Latch
	predicate func() bool
	onDetach  func()
	callback  func()
}

// WaitSet 是条件多路复用等待集。
//
// 并发模型：槽位表由单一互斥锁保护，Attach/Detach/Signal 的临界区有界
// （非阻塞操作）；Wait/TimedWait 是唯一可能挂起调用者的操作。
// 唤醒采用 close-channel 广播：Signal 关闭当前通知通道并换上新的，
// 所有阻塞中的等待者被同时唤醒并重扫谓词（电平触发，虚假唤醒无害）。
type WaitSet struct {
	opts *options

	mu         sync.Mutex
	slots      []slot
	validCount int
	nextGen    uint64
	notifyCh   chan struct{} // 当前代的广播通道，Signal 时 close 并替换
	closed     bool

	done chan struct{} // Close 时关闭，唤醒所有等待者
}

// New 创建 WaitSet。
// 容量在构造时固定（WithCapacity，默认 128），配置无效时返回错误。
func New(opts ...Option) (*WaitSet, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(options.meterProvider)
	if err != nil {
		return nil, err
	}
	options.metrics = metrics
	options.tracer = getTracer(options.tracerProvider)

	return &WaitSet{
		opts:     options,
		slots:    make([]slot, options.capacity),
		notifyCh: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Attach 注册一个触发器，返回不透明 Handle。
//
// origin 是外部所有的源对象，WaitSet 只持有非拥有引用，绝不延长其生命周期；
// 注册方必须保证 origin 在 Detach 之前存活，并在 origin 销毁前 Detach。
// predicate 绑定 origin 的零参布尔谓词，在注册有效期内必须始终可调用。
//
// 分配首个空闲槽位，不求值谓词，也不唤醒已阻塞的等待者。
// 表满时返回 [ErrCapacityExceeded]（表不变），已关闭时返回 [ErrClosed]。
func (ws *WaitSet) Attach(origin any, predicate func() bool, opts ...AttachOption) (Handle, error) {
	if predicate == nil {
		return Handle{}, ErrNilPredicate
	}
	return ws.attach(origin, predicate, applyAttachOptions(opts))
}

// AttachLatch 以 origin 所有的 Latch 注册触发器。
//
// 谓词即 latch.Load；闩锁被绑定到槽位，使 [WaitSet.Signal] 能同时完成
// "置真闩锁 + 广播唤醒"两步。这是生产者-消费者解耦的推荐用法。
func (ws *WaitSet) AttachLatch(origin any, latch *Latch, opts ...AttachOption) (Handle, error) {
	if latch == nil {
		return Handle{}, ErrNilLatch
	}
	ao := applyAttachOptions(opts)
	ao.latch = latch
	return ws.attach(origin, latch.Load, ao)
}

// applyAttachOptions 应用注册选项，nil 选项被静默跳过。
func applyAttachOptions(opts []AttachOption) *attachOptions {
	ao := defaultAttachOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(ao)
	}
	return ao
}

func (ws *WaitSet) attach(origin any, predicate func() bool, ao *attachOptions) (Handle, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return Handle{}, ErrClosed
	}

	for i := range ws.slots {
		if ws.slots[i].valid {
			continue
		}
		ws.nextGen++
		ws.slots[i] = slot{
			valid:     true,
			gen:       ws.nextGen,
			groupID:   ao.groupID,
			origin:    origin,
			latch:     ao.latch,
			predicate: predicate,
			onDetach:  ao.onDetach,
			callback:  ao.callback,
		}
		ws.validCount++

		ws.opts.metrics.recordAttach(context.Background(), true)
		if ws.opts.logger != nil {
			ws.opts.logger.Debug(context.Background(), "trigger attached",
				AttrGroupID(ao.groupID), AttrSlot(i), AttrCount(ws.validCount))
		}
		return Handle{index: uint32(i), gen: ws.nextGen}, nil
	}

	ws.opts.metrics.recordAttach(context.Background(), false)
	return Handle{}, ErrCapacityExceeded
}

// Detach 注销 Handle 对应的触发器，归还容量。
//
// 幂等：对已注销、未知或零值 Handle 调用是安全的空操作——teardown
// 竞态（origin 析构与谓词求值并发）不会破坏状态或崩溃。
// 注销钩子在表锁之外调用，origin 应在钩子里清空自己保存的 Handle。
func (ws *WaitSet) Detach(h Handle) {
	ws.mu.Lock()
	s := ws.lookupLocked(h)
	if s == nil {
		ws.mu.Unlock()
		return
	}
	hook := s.onDetach
	groupID := s.groupID
	*s = slot{}
	ws.validCount--
	ws.mu.Unlock()

	ws.opts.metrics.recordDetach(context.Background())
	if ws.opts.logger != nil {
		ws.opts.logger.Debug(context.Background(), "trigger detached",
			AttrGroupID(groupID), AttrSlot(int(h.index)))
	}
	if hook != nil {
		hook()
	}
}

// Signal 由持有 Handle 的生产者侧代码调用（通常在 origin 自身的状态
// 变更方法里），不属于面向消费者的接口。
//
// 置真槽位绑定的闩锁（AttachLatch 注册时），并广播唤醒所有阻塞中的
// 等待者使其重扫谓词。纯副作用：不求值谓词、不分发回调，生产者侧
// 调用非阻塞、开销有界。对过期 Handle 是安全的空操作。
//
// 通过 Attach（无闩锁绑定）注册的触发器，Signal 只做广播；
// 生产者应先自行更新谓词读取的状态再调用 Signal。
func (ws *WaitSet) Signal(h Handle) {
	ws.mu.Lock()
	s := ws.lookupLocked(h)
	if s == nil {
		ws.mu.Unlock()
		return
	}
	if s.latch != nil {
		s.latch.Set()
	}
	ch := ws.notifyCh
	ws.notifyCh = make(chan struct{})
	ws.mu.Unlock()

	// close 在锁外执行，唤醒本代所有等待者
	close(ch)
	ws.opts.metrics.recordSignal(context.Background())
}

// Wait 阻塞等待，直到任一有效谓词为真，按槽位（注册）顺序返回
// 当前满足的触发器集合。
//
// 电平触发：每次调用独立求值所有有效谓词。有满足项立即返回；
// 否则阻塞在广播通道上，被唤醒后重扫（对无关或过期唤醒免疫），
// 结果为空则继续阻塞。
//
// 正常返回的结果集永不为空；空结果只伴随错误出现：
// ctx 取消返回 ctx.Err()，WaitSet 关闭返回 [ErrClosed]。
// ctx 不得为 nil，否则 panic。
func (ws *WaitSet) Wait(ctx context.Context) ([]TriggerState, error) {
	if ctx == nil {
		panic("xwaitset: nil Context")
	}
	ctx, span := startSpan(ctx, ws.opts.tracer, spanNameWait)
	defer span.End()

	start := time.Now()
	states, err := ws.wait(ctx, nil)
	ws.opts.metrics.recordWait(ctx, len(states), err, time.Since(start))

	if err != nil {
		setSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(attrBatchSize, len(states)))
	setSpanOK(span)
	return states, nil
}

// TimedWait 是 Wait 的限时变体。
//
// 限时内没有任何谓词满足时返回 (nil, [ErrTimeout])——超时是独立结果，
// 与空结果集严格区分。timeout <= 0 退化为一次即时扫描（poll）。
// ctx 不得为 nil，否则 panic。
func (ws *WaitSet) TimedWait(ctx context.Context, timeout time.Duration) ([]TriggerState, error) {
	if ctx == nil {
		panic("xwaitset: nil Context")
	}
	ctx, span := startSpan(ctx, ws.opts.tracer, spanNameTimedWait)
	defer span.End()
	span.SetAttributes(attribute.Int64(attrTimeoutMs, timeout.Milliseconds()))

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	start := time.Now()
	states, err := ws.wait(ctx, timer.C)
	ws.opts.metrics.recordWait(ctx, len(states), err, time.Since(start))

	if err != nil {
		setSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(attrBatchSize, len(states)))
	setSpanOK(span)
	return states, nil
}

// wait 扫描-阻塞-重扫循环。timeout 为 nil 时永不超时（nil channel 永久阻塞）。
func (ws *WaitSet) wait(ctx context.Context, timeout <-chan time.Time) ([]TriggerState, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ws.mu.Lock()
		if ws.closed {
			ws.mu.Unlock()
			return nil, ErrClosed
		}
		states := ws.scanLocked()
		// 在释放锁之前取当前代的广播通道：晚于本次扫描的 Signal
		// 必然替换通道并 close 旧通道，不存在丢失唤醒的窗口。
		ch := ws.notifyCh
		ws.mu.Unlock()

		if len(states) > 0 {
			return states, nil
		}

		select {
		case <-ch:
			// 收到广播，重扫。唤醒可能因无关原因（其他触发器的
			// Signal、消费者已提前消费）而过期，重扫自然甄别。
		case <-timeout:
			return nil, ErrTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ws.done:
			return nil, ErrClosed
		}
	}
}

// scanLocked 按槽位顺序求值所有有效谓词，返回满足项的快照。
// 调用者必须持有 ws.mu；谓词在锁内求值，因此返回瞬间不含谓词为假的条目
// （生产者只会把闩锁从假翻真，清除只发生在消费者侧）。
func (ws *WaitSet) scanLocked() []TriggerState {
	var states []TriggerState
	for i := range ws.slots {
		s := &ws.slots[i]
		if s.valid && s.predicate() {
			states = append(states, TriggerState{
				groupID:  s.groupID,
				origin:   s.origin,
				callback: s.callback,
			})
		}
	}
	return states
}

// lookupLocked 按 Handle 查槽位，过期/未知/零值返回 nil。
// 调用者必须持有 ws.mu。
func (ws *WaitSet) lookupLocked(h Handle) *slot {
	if h.gen == 0 || int(h.index) >= len(ws.slots) {
		return nil
	}
	s := &ws.slots[h.index]
	if !s.valid || s.gen != h.gen {
		return nil
	}
	return s
}

// Len 返回当前有效槽位数（瞬时快照）。
func (ws *WaitSet) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.validCount
}

// Capacity 返回构造时固定的表容量。
func (ws *WaitSet) Capacity() int {
	return len(ws.slots)
}

// Close 关闭 WaitSet。
//
// 先注销所有仍有效的槽位（逐个调用 detach hook，让 origin 清空自己
// 保存的 Handle——这是防止悬挂引用的关键安全契约），再唤醒所有阻塞中的
// 等待者使其返回 [ErrClosed]。第二次及后续调用返回 [ErrClosed]。
func (ws *WaitSet) Close() error {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return ErrClosed
	}
	ws.closed = true

	var hooks []func()
	for i := range ws.slots {
		if !ws.slots[i].valid {
			continue
		}
		if h := ws.slots[i].onDetach; h != nil {
			hooks = append(hooks, h)
		}
		ws.slots[i] = slot{}
	}
	detached := ws.validCount
	ws.validCount = 0
	close(ws.done)
	ws.mu.Unlock()

	// 钩子在表锁之外调用，与 Detach 保持一致
	for _, hook := range hooks {
		hook()
	}

	if ws.opts.logger != nil {
		ws.opts.logger.Debug(context.Background(), "waitset closed",
			AttrCount(detached))
	}
	return nil
}
