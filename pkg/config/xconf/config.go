package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置格式
type Format string

// 支持的配置格式
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 只读配置访问接口。
// 所有方法并发安全（加载后配置不可变）。
type Config interface {
	// Exists 判断 key 是否存在
	Exists(key string) bool

	// String 返回字符串值，缺失时返回零值
	String(key string) string

	// Int 返回整型值，缺失时返回零值
	Int(key string) int

	// Bool 返回布尔值，缺失时返回零值
	Bool(key string) bool

	// Duration 返回时长值（支持 "5s" 等字符串），缺失时返回零值
	Duration(key string) time.Duration

	// Strings 返回字符串切片，缺失时返回 nil
	Strings(key string) []string

	// Unmarshal 将 path 下的子树解码到 v（koanf tag），
	// path 为空串时解码整棵树。v 不得为 nil。
	Unmarshal(path string, v any) error
}

// 编译时接口检查
var _ Config = (*koanfConfig)(nil)

// koanfConfig 是 Config 接口的 koanf 实现
type koanfConfig struct {
	k *koanf.Koanf
}

// New 从文件路径创建配置实例。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return NewFromBytes(data, format, opts...)
}

// NewFromBytes 从字节数据创建配置实例，需要显式指定格式。
// 空数据会创建一个空配置实例（与读取空文件的行为一致）。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(options)
	}

	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = kyaml.Parser()
	case FormatJSON:
		parser = kjson.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	k := koanf.New(options.delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	}

	return &koanfConfig{k: k}, nil
}

// detectFormat 按文件扩展名检测格式
func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

func (c *koanfConfig) Exists(key string) bool {
	return c.k.Exists(key)
}

func (c *koanfConfig) String(key string) string {
	return c.k.String(key)
}

func (c *koanfConfig) Int(key string) int {
	return c.k.Int(key)
}

func (c *koanfConfig) Bool(key string) bool {
	return c.k.Bool(key)
}

func (c *koanfConfig) Duration(key string) time.Duration {
	return c.k.Duration(key)
}

func (c *koanfConfig) Strings(key string) []string {
	return c.k.Strings(key)
}

func (c *koanfConfig) Unmarshal(path string, v any) error {
	if v == nil {
		return ErrNilTarget
	}
	if err := c.k.Unmarshal(path, v); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return nil
}
