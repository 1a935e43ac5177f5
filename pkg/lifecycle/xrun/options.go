package xrun

import (
	"io"
	"log/slog"
	"os"
	"syscall"
)

// DefaultSignals 返回默认监听的进程信号列表。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

// Option Group 配置选项函数
type Option func(*groupOptions)

// groupOptions Group 内部配置
type groupOptions struct {
	name            string
	logger          *slog.Logger
	signals         []os.Signal
	noSignalHandler bool
}

// defaultOptions 返回默认配置。
// 默认 logger 丢弃所有输出，避免未配置时污染 stderr。
func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithName 设置 Group 名称，用于日志区分多实例。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger 设置日志记录器。nil 被静默忽略。
func WithLogger(logger *slog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSignals 自定义 Run 监听的信号列表。
// 空切片与 nil 等价，均使用 DefaultSignals()；
// 如需禁用信号处理，应使用 [WithoutSignalHandler]。
func WithSignals(signals []os.Signal) Option {
	return func(o *groupOptions) {
		o.signals = signals
	}
}

// WithoutSignalHandler 禁用 Run 的信号监听服务。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
