package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，底层对齐 slog.Level。
type Level slog.Level

// 预定义级别
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// String 返回级别的小写字符串表示。
func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel 解析级别字符串（大小写不敏感）。
// 支持 debug/info/warn/warning/error；空串视为 info。
// 未知值返回 [ErrUnknownLevel]。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
