// Package xfsevent 提供基于 fsnotify 的 WaitSet 文件事件触发源。
//
// Watcher 监视一组路径，把文件系统事件追加进有界待处理队列，并 Signal
// 唤醒等待者。谓词即"队列非空"——清除动作就是消费者调用 Drain 取走
// 全部待处理事件，因此不存在独立闩锁与队列状态不一致的窗口。
//
// 使用方式：
//
//	w, err := xfsevent.New([]string{"/etc/app"})
//	if err != nil { ... }
//	if err := w.Attach(ws, xwaitset.WithGroupID(2)); err != nil { ... }
//	defer w.Close() // Close 先 Detach 再关 fsnotify，origin 销毁前注销
//
//	states, err := ws.Wait(ctx)
//	// ...
//	for _, ev := range w.Drain() { handle(ev) }
//
// # 注意事项
//
//   - 队列有界（WithMaxPending，默认 1024）：溢出时丢弃最新事件并累计
//     Dropped 计数，等待者仍会被唤醒——fsnotify 语义本就允许事件合并，
//     消费者应按"有变化"而非逐事件精确回放来设计
//   - 路径注册失败会按配置重试（avast/retry-go），全部失败时 New 返回
//     ErrWatchFailed 并释放底层 watcher
package xfsevent
