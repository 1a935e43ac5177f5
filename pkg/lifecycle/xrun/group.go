package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"
)

// Group 基于 errgroup + context 管理多个服务的并发运行和协调关闭。
//
// 当任一服务返回错误或 context 被取消时，所有服务都会收到取消信号。
// Go、GoWithName、Cancel 可安全地从多个 goroutine 并发调用；
// Wait 应仅调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建新的 Group。
//
// 返回 Group 和派生的 context。当任一 goroutine 返回错误时，
// 返回的 context 会被取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	// nil context 归一化为 context.Background()，
	// 防止 context.WithCancelCause(nil) panic。
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(options)
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动一个 goroutine 执行 fn。
//
// fn 应该监听 ctx.Done() 以响应取消信号。
// 当 fn 返回非 nil 错误时，会触发所有其他 goroutine 的取消。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，但会在日志中记录名称。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.opts.logger.Debug("service starting",
			slog.String("group", g.opts.name),
			slog.String("service", name),
		)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn("service exited with error",
				slog.String("group", g.opts.name),
				slog.String("service", name),
				slog.Any("error", err),
			)
		} else {
			g.opts.logger.Debug("service stopped",
				slog.String("group", g.opts.name),
				slog.String("service", name),
			)
		}
		return err
	})
}

// Wait 等待所有 goroutine 完成。
//
// 返回第一个非 nil 错误（如果有）。如果错误是 context.Canceled 且
// 取消来自 Group 自身（Cancel 或信号处理），优先返回 context.Cause
// 设置的退出原因；没有显式原因时返回 nil。
func (g *Group) Wait() error {
	// CancelCauseFunc 是幂等的，defer 确保 context 资源释放。
	defer g.cancel(nil)

	err := g.eg.Wait()

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() != nil {
			if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
				return cause
			}
			return nil
		}
		// causeCtx 未被取消，context.Canceled 来自服务内部，不过滤。
		return err
	}

	// 所有服务返回 nil 时仍需检查显式 Cancel(cause)：
	// 服务可能响应取消后返回 nil 而非 ctx.Err()。
	if err == nil && g.causeCtx.Err() != nil {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
	}

	return err
}

// Cancel 主动取消所有 goroutine。
//
// cause 会作为 context 的取消原因，Wait() 通过 context.Cause 返回该
// 原因。注意：cause 不应包装 context.Canceled，否则会被 Wait 过滤。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// ----------------------------------------------------------------------------
// 便捷函数
// ----------------------------------------------------------------------------

// Run 是最常用的启动模式：监听信号 + 运行服务。
//
// 当收到 DefaultSignals 中的信号时，ctx 被取消，所有服务应优雅关闭，
// Run 返回 *SignalError（errors.Is(err, ErrSignal) 成立）。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}

		g.Go(func(ctx context.Context) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, signals...)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				g.opts.logger.Info("received signal",
					slog.String("group", g.opts.name),
					slog.String("signal", sig.String()),
				)
				g.cancel(&SignalError{Signal: sig})
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	for _, svc := range services {
		g.Go(svc)
	}
	return g.Wait()
}
