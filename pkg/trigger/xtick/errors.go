package xtick

import "errors"

var (
	// ErrInvalidSpec cron 表达式无效。
	ErrInvalidSpec = errors.New("xtick: invalid cron spec")

	// ErrAlreadyAttached Ticker 已注册到某个 WaitSet。
	// 一个 Ticker 同一时刻只能注册到一个 WaitSet。
	ErrAlreadyAttached = errors.New("xtick: ticker already attached")
)
