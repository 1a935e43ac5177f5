package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Builder 日志配置构建器
type Builder struct {
	output    io.Writer
	level     Level
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	rotator   *lumberjack.Logger
	err       error
}

// New 创建配置构建器。
// 默认：输出 os.Stderr，级别 info，格式 text，不记录源码位置。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:   os.Stderr,
		level:    LevelInfo,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.level = level
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。
// 空值视为使用默认格式，避免误把"没填"变成配置错误。
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		b.format = "text"
		return b
	}
	if normalized != "text" && normalized != "json" {
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		return b
	}
	b.format = normalized
	return b
}

// SetAddSource 设置是否记录源码位置（有运行时开销，默认关闭）
func (b *Builder) SetAddSource(enabled bool) *Builder {
	b.addSource = enabled
	return b
}

// SetFile 设置轮转文件输出，替代 SetOutput。
//
// maxSizeMB 单个文件上限（MB），maxBackups 保留的旧文件数，
// maxAgeDays 旧文件保留天数，compress 是否 gzip 压缩旧文件。
// 非正参数使用 lumberjack 默认值。
func (b *Builder) SetFile(path string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) *Builder {
	if strings.TrimSpace(path) == "" {
		b.err = ErrEmptyFilePath
		return b
	}
	b.rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
	}
	return b
}

// Build 构建 Logger。
//
// 返回 (logger, cleanup, error)；cleanup 关闭文件输出（无文件输出时
// 为空操作），调用方应在进程退出前调用。配置过程中出现的第一个错误
// 在此统一返回。
func (b *Builder) Build() (Logger, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	output := b.output
	cleanup := func() error { return nil }
	if b.rotator != nil {
		output = b.rotator
		cleanup = b.rotator.Close
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}

	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}

	return &xlogger{handler: handler, levelVar: b.levelVar}, cleanup, nil
}
