package main

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/omeyang/waitkit/pkg/lifecycle/xrun"
	"github.com/omeyang/waitkit/pkg/observability/xlog"
	"github.com/omeyang/waitkit/pkg/sync/xwaitset"
	"github.com/omeyang/waitkit/pkg/trigger/xfsevent"
	"github.com/omeyang/waitkit/pkg/trigger/xtick"
)

// group id 约定：消费循环按此分类分发
const (
	groupActivate uint64 = iota
	groupAction
	groupTick
	groupFSEvent
)

// activator 演示用触发源：同一个 origin 上挂两个事件。
//
// activate 带激活码，perform-action 不带。两个事件各有一把
// origin 所有的闩锁，消费者分发后调用对应的 Reset。
type activator struct {
	activateLatch xwaitset.Latch
	actionLatch   xwaitset.Latch
	code          atomic.Int64

	activateHandle xwaitset.Handle
	actionHandle   xwaitset.Handle
}

// Activate 置真 activate 闩锁并记录激活码。
func (a *activator) Activate(ws *xwaitset.WaitSet, code int64) {
	a.code.Store(code)
	a.activateLatch.Set()
	ws.Signal(a.activateHandle)
}

// PerformAction 置真 perform-action 闩锁。
func (a *activator) PerformAction(ws *xwaitset.WaitSet) {
	a.actionLatch.Set()
	ws.Signal(a.actionHandle)
}

// Code 返回最近一次激活码。
func (a *activator) Code() int64 {
	return a.code.Load()
}

// ResetActivate 清除 activate 闩锁，消费者分发后调用。
func (a *activator) ResetActivate() {
	a.activateLatch.Reset()
}

// ResetAction 清除 perform-action 闩锁。
func (a *activator) ResetAction() {
	a.actionLatch.Reset()
}

// attach 把两个事件注册到 WaitSet，回调在注册时闭包绑定。
func (a *activator) attach(ws *xwaitset.WaitSet, logger xlog.Logger) error {
	h, err := ws.AttachLatch(a, &a.activateLatch,
		xwaitset.WithGroupID(groupActivate),
		xwaitset.WithCallback(func() {
			logger.Info(context.Background(), "activated",
				slog.Int64("code", a.Code()))
		}),
	)
	if err != nil {
		return err
	}
	a.activateHandle = h

	h, err = ws.AttachLatch(a, &a.actionLatch,
		xwaitset.WithGroupID(groupAction),
		xwaitset.WithCallback(func() {
			logger.Info(context.Background(), "action performed")
		}),
	)
	if err != nil {
		ws.Detach(a.activateHandle)
		return err
	}
	a.actionHandle = h
	return nil
}

// runDemo 组装 WaitSet、触发源与生产/消费循环，运行到 ctx 结束或收到信号。
func runDemo(ctx context.Context, dc *demoConfig, logger xlog.Logger) error {
	ws, err := xwaitset.New(
		xwaitset.WithCapacity(dc.Capacity),
		xwaitset.WithLogger(logger),
	)
	if err != nil {
		return &usageError{err}
	}
	defer func() { _ = ws.Close() }()

	act := &activator{}
	if err := act.attach(ws, logger); err != nil {
		return err
	}

	var ticker *xtick.Ticker
	if dc.Cron != "" {
		ticker, err = xtick.New(dc.Cron)
		if err != nil {
			return &usageError{err}
		}
		if err := ticker.Attach(ws, xwaitset.WithGroupID(groupTick)); err != nil {
			return err
		}
		ticker.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = ticker.Stop(stopCtx)
		}()
	}

	var watcher *xfsevent.Watcher
	if len(dc.Watch) > 0 {
		watcher, err = xfsevent.New(dc.Watch, xfsevent.WithLogger(logger))
		if err != nil {
			return &usageError{err}
		}
		if err := watcher.Attach(ws, xwaitset.WithGroupID(groupFSEvent)); err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
	}

	logger.Info(ctx, "demo started",
		slog.Int("capacity", dc.Capacity),
		slog.Duration("activate_every", dc.ActivateEvery),
		slog.String("cron", dc.Cron),
		slog.Int("watch_paths", len(dc.Watch)))

	err = xrun.Run(ctx,
		func(ctx context.Context) error {
			return produce(ctx, ws, act, dc.ActivateEvery)
		},
		func(ctx context.Context) error {
			return consume(ctx, ws, logger)
		},
	)
	// 信号退出与时长到期都是正常结束
	if errors.Is(err, xrun.ErrSignal) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info(context.Background(), "demo stopped", xlog.Err(err))
		return nil
	}
	return err
}

// produce 交替触发 activate（激活码递增）与 perform-action。
func produce(ctx context.Context, ws *xwaitset.WaitSet, act *activator, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()

	var code int64
	activate := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if activate {
				code++
				act.Activate(ws, code)
			} else {
				act.PerformAction(ws)
			}
			activate = !activate
		}
	}
}

// consume 等待触发、按 group id 分发并复位对应 origin 的状态。
func consume(ctx context.Context, ws *xwaitset.WaitSet, logger xlog.Logger) error {
	for {
		states, err := ws.Wait(ctx)
		if err != nil {
			// ctx 取消与 WaitSet 关闭都是正常收尾
			if errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) ||
				errors.Is(err, xwaitset.ErrClosed) {
				return ctx.Err()
			}
			return err
		}

		for _, st := range states {
			switch st.GroupID() {
			case groupActivate:
				st.Invoke()
				if act, ok := xwaitset.OriginAs[*activator](st); ok {
					act.ResetActivate()
				}
			case groupAction:
				st.Invoke()
				if act, ok := xwaitset.OriginAs[*activator](st); ok {
					act.ResetAction()
				}
			case groupTick:
				if tk, ok := xwaitset.OriginAs[*xtick.Ticker](st); ok {
					logger.Info(ctx, "tick", slog.Int64("total", tk.Ticks()))
					tk.Reset()
				}
			case groupFSEvent:
				if w, ok := xwaitset.OriginAs[*xfsevent.Watcher](st); ok {
					for _, ev := range w.Drain() {
						logger.Info(ctx, "file event",
							slog.String("op", ev.Op.String()),
							slog.String("name", ev.Name))
					}
				}
			default:
				logger.Warn(ctx, "unknown trigger group",
					xlog.Count(int64(st.GroupID())))
			}
		}
	}
}
