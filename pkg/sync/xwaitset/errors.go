package xwaitset

import "errors"

// 预定义错误，使用 errors.Is 进行比较
var (
	// ErrCapacityExceeded 触发器表已满。
	// Attach/AttachLatch 在无空闲槽位时返回此错误，表不会被修改。
	ErrCapacityExceeded = errors.New("xwaitset: capacity exceeded")

	// ErrClosed WaitSet 已关闭。
	// Close 后调用 Attach 返回此错误；阻塞中的 Wait/TimedWait 被唤醒并返回此错误。
	// Close 第二次及后续调用也返回此错误。
	ErrClosed = errors.New("xwaitset: waitset is closed")

	// ErrTimeout TimedWait 在限时内没有任何谓词满足。
	// 与空结果集严格区分：超时返回 (nil, ErrTimeout)，正常返回的结果集永不为空。
	ErrTimeout = errors.New("xwaitset: wait timed out")

	// ErrNilPredicate 谓词为 nil。
	// Attach 要求谓词在注册有效期内始终可调用。
	ErrNilPredicate = errors.New("xwaitset: predicate must not be nil")

	// ErrNilLatch 闩锁为 nil。
	// AttachLatch 要求传入 origin 所有的有效 Latch。
	ErrNilLatch = errors.New("xwaitset: latch must not be nil")

	// ErrInvalidCapacity 容量配置无效。
	// 容量必须在 [1, 65536] 范围内，New 在 validate 阶段返回此错误。
	ErrInvalidCapacity = errors.New("xwaitset: invalid capacity")
)
