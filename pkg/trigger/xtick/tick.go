package xtick

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/waitkit/pkg/sync/xwaitset"
)

// Ticker 是 cron 驱动的 WaitSet 触发源。
//
// 闩锁由 Ticker 所有：调度 fire 置真，消费者分发后 Reset。
// Attach/Detach/Start/Stop 并发安全。
type Ticker struct {
	spec string
	cron *cron.Cron

	latch xwaitset.Latch
	ticks atomic.Int64

	mu       sync.Mutex
	ws       *xwaitset.WaitSet
	handle   xwaitset.Handle
	attached bool
}

// New 创建 Ticker。spec 为 robfig/cron/v3 标准表达式
// （含 @every/@hourly 等描述符），无效时返回 [ErrInvalidSpec]。
// 创建后调度处于停止状态，需显式 Start。
func New(spec string, opts ...Option) (*Ticker, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}

	cronOpts := []cron.Option{cron.WithLocation(o.location)}
	if o.withSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	t := &Ticker{
		spec: spec,
		cron: cron.New(cronOpts...),
	}
	if _, err := t.cron.AddFunc(spec, t.fire); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSpec, spec, err)
	}
	return t, nil
}

// fire 调度回调：累加计数、置真闩锁、唤醒等待者。
// 未注册时只记账——之后 Attach 时闩锁已置真的状态会在下一次 Wait 可见。
func (t *Ticker) fire() {
	t.ticks.Add(1)
	t.latch.Set()

	t.mu.Lock()
	ws, h, ok := t.ws, t.handle, t.attached
	t.mu.Unlock()
	if ok {
		ws.Signal(h)
	}
}

// Attach 把 Ticker 注册到 WaitSet。
//
// 谓词为闩锁状态；detach hook 清空 Ticker 保存的 Handle，
// 因此 WaitSet.Close 或外部 Detach 之后 fire 不会 Signal 已死槽位。
// 已注册时返回 [ErrAlreadyAttached]。
func (t *Ticker) Attach(ws *xwaitset.WaitSet, opts ...xwaitset.AttachOption) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attached {
		return ErrAlreadyAttached
	}

	opts = append(opts, xwaitset.WithDetachHook(t.clearHandle))
	h, err := ws.AttachLatch(t, &t.latch, opts...)
	if err != nil {
		return err
	}
	t.ws, t.handle, t.attached = ws, h, true
	return nil
}

// clearHandle detach hook：清空保存的 Handle。
// 在 WaitSet 表锁之外被调用，取 t.mu 无死锁风险。
func (t *Ticker) clearHandle() {
	t.mu.Lock()
	t.ws = nil
	t.handle = xwaitset.Handle{}
	t.attached = false
	t.mu.Unlock()
}

// Detach 从 WaitSet 注销。幂等：未注册时是安全的空操作。
func (t *Ticker) Detach() {
	t.mu.Lock()
	ws, h, ok := t.ws, t.handle, t.attached
	t.mu.Unlock()
	if ok {
		// detach hook 会回调 clearHandle 完成清理
		ws.Detach(h)
	}
}

// Start 启动调度。重复调用无害（cron 幂等）。
func (t *Ticker) Start() {
	t.cron.Start()
}

// Stop 停止调度并注销。
//
// 先等待在途的 fire 回调结束（受 ctx 限时），再 Detach——保证返回后
// 不会再有对 WaitSet 的 Signal，origin 可以安全销毁。
func (t *Ticker) Stop(ctx context.Context) error {
	stopCtx := t.cron.Stop()

	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		t.Detach()
		return ctx.Err()
	}

	t.Detach()
	return nil
}

// Ticks 返回累计触发次数（单调递增，Reset 不清零）。
func (t *Ticker) Ticks() int64 {
	return t.ticks.Load()
}

// Pending 返回闩锁当前状态。
func (t *Ticker) Pending() bool {
	return t.latch.Load()
}

// Reset 清除闩锁。消费者在分发后调用。
func (t *Ticker) Reset() {
	t.latch.Reset()
}

// Spec 返回构造时的 cron 表达式。
func (t *Ticker) Spec() string {
	return t.spec
}
