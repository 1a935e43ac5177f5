package xlog

import "errors"

var (
	// ErrUnknownLevel 未知的日志级别字符串。
	// ParseLevel / Builder.SetLevelString 遇到无法识别的级别时返回。
	ErrUnknownLevel = errors.New("xlog: unknown level")

	// ErrUnknownFormat 未知的输出格式。
	// 仅支持 text 和 json。
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrEmptyFilePath 文件输出路径为空。
	ErrEmptyFilePath = errors.New("xlog: empty file path")
)
