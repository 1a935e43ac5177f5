// Package xlog 提供基于 log/slog 的结构化日志。
//
// 设计理念：
//   - 强制 context 传递，方法签名只接受 slog.Attr（类型安全，
//     避免隐式 key-value 转换开销）
//   - 动态级别控制（slog.LevelVar），运行时调整无需重启
//   - Builder 链式配置，Build() 返回 cleanup 函数管理输出生命周期
//   - 可选文件输出，经 lumberjack 自动轮转
//
// 使用方式：
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("debug").
//	    SetFormat("json").
//	    Build()
//	if err != nil { ... }
//	defer cleanup()
//
//	logger.Info(ctx, "trigger attached", xlog.Component("xwaitset"))
package xlog
