package xwaitset

// TriggerState 描述一次 Wait 调用中单个已满足的触发器。
//
// 每次 Wait 重新生成，不应跨 Wait 调用保存：底层槽位被 Detach 后，
// 继续持有对应的 TriggerState 只保证不崩溃（值语义快照），
// 不保证 origin 仍然存活。
type TriggerState struct {
	groupID  uint64
	origin   any
	callback func()
}

// GroupID 返回注册时设置的分组 ID。
func (s TriggerState) GroupID() uint64 {
	return s.groupID
}

// Origin 返回注册时传入的 origin 引用。
// 需要具体类型时使用 [OriginAs] 做受检断言。
func (s TriggerState) Origin() any {
	return s.origin
}

// Invoke 调用注册时通过 WithCallback 绑定的分发回调。
// 未绑定回调时是安全的空操作，返回 false；否则调用后返回 true。
// 调用后由消费者负责 Reset origin 的闩锁。
func (s TriggerState) Invoke() bool {
	if s.callback == nil {
		return false
	}
	s.callback()
	return true
}

// OriginAs 以受检方式取回具体类型的 origin。
// 类型不匹配时返回 (零值, false)，不会 panic。
func OriginAs[T any](s TriggerState) (T, bool) {
	v, ok := s.origin.(T)
	return v, ok
}
