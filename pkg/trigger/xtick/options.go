package xtick

import "time"

// Option Ticker 配置选项函数
type Option func(*options)

type options struct {
	withSeconds bool
	location    *time.Location
}

func defaultOptions() *options {
	return &options{
		location: time.Local,
	}
}

// WithSeconds 启用秒级精度（6 段 cron 表达式）。
func WithSeconds() Option {
	return func(o *options) {
		o.withSeconds = true
	}
}

// WithLocation 设置调度时区。nil 被静默忽略，保持默认本地时区。
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}
