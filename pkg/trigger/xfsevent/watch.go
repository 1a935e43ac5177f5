package xfsevent

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	retry "github.com/avast/retry-go/v5"
	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/waitkit/pkg/observability/xlog"
	"github.com/omeyang/waitkit/pkg/sync/xwaitset"
)

// Watcher 是 fsnotify 驱动的 WaitSet 触发源。
//
// 事件循环在 New 里启动，Close 停止并等待其退出。
// Attach/Detach/Drain/Close 并发安全。
type Watcher struct {
	opts *options
	fsw  *fsnotify.Watcher

	mu       sync.Mutex
	pending  []fsnotify.Event
	ws       *xwaitset.WaitSet
	handle   xwaitset.Handle
	attached bool

	dropped atomic.Int64
	closed  atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New 创建 Watcher 并注册所有监视路径。
//
// 每个路径的注册按配置重试（WithAddRetries/WithRetryDelay）；
// 任一路径重试耗尽后返回 [ErrWatchFailed]，底层 watcher 被释放。
// 事件循环随即启动。
func New(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}

	for _, p := range paths {
		err := retry.New(
			retry.Attempts(o.addRetries),
			retry.Delay(o.retryDelay),
			retry.LastErrorOnly(true),
		).Do(func() error { return fsw.Add(p) })
		if err != nil {
			// 释放已建立的 watcher，注册失败不留半开状态
			_ = fsw.Close()
			return nil, fmt.Errorf("%w: %q: %w", ErrWatchFailed, p, err)
		}
	}

	w := &Watcher{
		opts: o,
		fsw:  fsw,
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// loop 事件循环：入队 fsnotify 事件、记录内部错误。
func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.enqueue(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.opts.logger != nil {
				w.opts.logger.Warn(context.Background(), "fsnotify error",
					xlog.Component("xfsevent"), xlog.Err(err))
			}
		case <-w.done:
			return
		}
	}
}

// enqueue 事件入队并唤醒等待者。
// 队列满时丢弃事件但仍然 Signal——消费者看到"有变化"即可。
func (w *Watcher) enqueue(ev fsnotify.Event) {
	w.mu.Lock()
	if len(w.pending) < w.opts.maxPending {
		w.pending = append(w.pending, ev)
	} else {
		w.dropped.Add(1)
		if w.opts.logger != nil {
			w.opts.logger.Warn(context.Background(), "pending queue full, event dropped",
				xlog.Component("xfsevent"), xlog.Count(w.dropped.Load()))
		}
	}
	ws, h, ok := w.ws, w.handle, w.attached
	w.mu.Unlock()

	if ok {
		ws.Signal(h)
	}
}

// hasPending 注册到 WaitSet 的谓词：待处理队列非空。
// 临界区有界，满足谓词非阻塞的约束。
func (w *Watcher) hasPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) > 0
}

// Attach 把 Watcher 注册到 WaitSet。
//
// 设计决策: 谓词是"队列非空"而非独立闩锁——Drain 取空队列即完成清除，
// 不存在先清闩锁、后到事件被吞掉的竞态窗口。
// 已注册时返回 [ErrAlreadyAttached]。
func (w *Watcher) Attach(ws *xwaitset.WaitSet, opts ...xwaitset.AttachOption) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attached {
		return ErrAlreadyAttached
	}

	opts = append(opts, xwaitset.WithDetachHook(w.clearHandle))
	h, err := ws.Attach(w, w.hasPending, opts...)
	if err != nil {
		return err
	}
	w.ws, w.handle, w.attached = ws, h, true
	return nil
}

// clearHandle detach hook：清空保存的 Handle。
// 在 WaitSet 表锁之外被调用，取 w.mu 无死锁风险。
func (w *Watcher) clearHandle() {
	w.mu.Lock()
	w.ws = nil
	w.handle = xwaitset.Handle{}
	w.attached = false
	w.mu.Unlock()
}

// Detach 从 WaitSet 注销。幂等：未注册时是安全的空操作。
func (w *Watcher) Detach() {
	w.mu.Lock()
	ws, h, ok := w.ws, w.handle, w.attached
	w.mu.Unlock()
	if ok {
		ws.Detach(h)
	}
}

// Drain 取走全部待处理事件（即谓词清除动作），由消费者在分发时调用。
// Drain 返回后到达的事件会重新触发唤醒，出现在下一次 Wait 的结果里。
func (w *Watcher) Drain() []fsnotify.Event {
	w.mu.Lock()
	evs := w.pending
	w.pending = nil
	w.mu.Unlock()
	return evs
}

// Dropped 返回因队列溢出而被丢弃的事件累计数。
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

// Close 关闭 Watcher。
//
// 先 Detach（保证之后不再 Signal），再关闭 fsnotify 并等待事件循环
// 退出。第二次及后续调用返回 [ErrClosed]。
func (w *Watcher) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	w.Detach()
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
