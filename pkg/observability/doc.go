// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持轮转文件输出
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范（WaitSet 自身的指标与追踪埋点
//     内聚在 pkg/sync/xwaitset）
//   - 支持动态级别控制
package observability
