// Package xtick 提供基于 cron 调度的 WaitSet 触发源。
//
// Ticker 是一个自带闩锁的 origin：按 cron 表达式（robfig/cron/v3 标准
// 语法，含 @every 描述符）定时把闩锁置真并 Signal 唤醒等待者。消费者
// 在 Wait 返回后分发处理，并调用 Reset 清除闩锁；两次消费之间触发的
// 多次 tick 合并为一次闩锁置真，累计次数可通过 Ticks 观察。
//
// 使用方式：
//
//	t, err := xtick.New("@every 1s")
//	if err != nil { ... }
//	if err := t.Attach(ws, xwaitset.WithGroupID(1)); err != nil { ... }
//	t.Start()
//	defer t.Stop(ctx) // Stop 先停调度再 Detach，origin 销毁前注销
//
// # 注意事项
//
//   - Ticker 持有自己的 Handle（不透明令牌），Detach/Stop/WaitSet.Close
//     任一路径都会通过 detach hook 清空它，重复注销是安全的空操作
//   - Reset 只清闩锁不清 tick 计数；计数单调递增，供统计与测试断言
package xtick
