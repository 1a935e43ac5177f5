// Package xconf 提供基于 koanf 的配置加载。
//
// 支持 YAML 与 JSON 两种格式：New 按文件扩展名自动检测，
// NewFromBytes 需显式指定格式（适用于内嵌配置等场景）。
// key 使用 "." 分隔的路径（可通过 WithDelim 调整）。
//
// 使用方式：
//
//	cfg, err := xconf.New("demo.yaml")
//	if err != nil { ... }
//	capacity := cfg.Int("waitset.capacity")
//
//	var dc DemoConfig
//	if err := cfg.Unmarshal("", &dc); err != nil { ... }
package xconf
