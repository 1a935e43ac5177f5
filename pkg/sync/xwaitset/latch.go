package xwaitset

import "sync/atomic"

// Latch 是 origin 所有的布尔闩锁。
//
// 生产者通过 Set（通常经由 [WaitSet.Signal]）将其置真，状态持续保持，
// 直到消费者在分发后调用 Reset 清除。所有方法并发安全，
// 生产者写入对等待者线程立即可见（atomic 语义）。
//
// 零值即可用。Latch 不可复制（含 atomic 状态），应以指针持有或
// 嵌入 origin 结构体使用。
type Latch struct {
	state atomic.Bool
}

// Set 将闩锁置真。幂等。
func (l *Latch) Set() {
	l.state.Store(true)
}

// Reset 清除闩锁。幂等。
// 只有消费者在分发后调用；忘记调用会导致同一条件反复出现在 Wait 结果中。
func (l *Latch) Reset() {
	l.state.Store(false)
}

// Load 返回闩锁当前状态。
// AttachLatch 注册的谓词即为此方法。
func (l *Latch) Load() bool {
	return l.state.Load()
}
