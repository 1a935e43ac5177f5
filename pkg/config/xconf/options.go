package xconf

// defaultDelim 默认 key 路径分隔符
const defaultDelim = "."

// Option 配置选项函数
type Option func(*options)

type options struct {
	delim string
}

func defaultOptions() *options {
	return &options{
		delim: defaultDelim,
	}
}

// WithDelim 设置 key 路径分隔符。空串被静默忽略，保持默认 "."。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}
