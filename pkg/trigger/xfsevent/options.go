package xfsevent

import (
	"time"

	"github.com/omeyang/waitkit/pkg/observability/xlog"
)

const (
	// defaultMaxPending 默认待处理队列上限
	defaultMaxPending = 1024
	// defaultAddRetries 默认路径注册重试次数
	defaultAddRetries = 3
	// defaultRetryDelay 默认重试间隔
	defaultRetryDelay = 50 * time.Millisecond
)

// Option Watcher 配置选项函数
type Option func(*options)

type options struct {
	maxPending int
	addRetries uint
	retryDelay time.Duration
	logger     xlog.Logger
}

func defaultOptions() *options {
	return &options{
		maxPending: defaultMaxPending,
		addRetries: defaultAddRetries,
		retryDelay: defaultRetryDelay,
	}
}

// WithMaxPending 设置待处理队列上限。
// 溢出时丢弃最新事件并累计 Dropped 计数。n <= 0 被静默忽略。
func WithMaxPending(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPending = n
		}
	}
}

// WithAddRetries 设置路径注册的重试次数（含首次尝试）。
// n == 0 被静默忽略。
func WithAddRetries(n uint) Option {
	return func(o *options) {
		if n > 0 {
			o.addRetries = n
		}
	}
}

// WithRetryDelay 设置路径注册的重试间隔。非正值被静默忽略。
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}

// WithLogger 设置日志记录器，用于记录 fsnotify 内部错误与事件丢弃。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
