package xconf

import "errors"

var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnknownFormat 无法识别的配置格式。
	// New 仅支持 .yaml/.yml/.json 扩展名；NewFromBytes 仅支持
	// FormatYAML/FormatJSON。
	ErrUnknownFormat = errors.New("xconf: unknown config format")

	// ErrLoadFailed 配置读取或解析失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrNilTarget Unmarshal 目标为 nil。
	ErrNilTarget = errors.New("xconf: nil unmarshal target")
)
