// Package xrun 提供基于 errgroup + context 的服务生命周期管理。
//
// Group 管理多个长驻 goroutine（消费循环、生产者、服务器）的并发运行
// 与协调关闭：任一服务返回错误或 context 被取消时，所有服务都会收到
// 取消信号。Run 在此之上加上进程信号监听，收到 SIGHUP/SIGINT/SIGTERM/
// SIGQUIT 时以 *SignalError 为取消原因优雅退出。
//
// 使用方式：
//
//	err := xrun.Run(ctx,
//	    func(ctx context.Context) error { return consumeLoop(ctx) },
//	    func(ctx context.Context) error { return produceLoop(ctx) },
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 信号退出，正常关闭
//	}
//
// 设计决策: 不提供任何包级单例——Group 由调用方显式构造、显式传递给
// 各服务，初始化与 teardown 顺序由调用方掌控，避免隐式生命周期的
// 环境全局量。
package xrun
