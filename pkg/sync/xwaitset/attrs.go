package xwaitset

import "log/slog"

// =============================================================================
// 日志属性键常量
// =============================================================================

const (
	attrKeyGroupID = "group_id"
	attrKeySlot    = "slot"
	attrKeyCount   = "count"
	attrKeyError   = "error"
)

// =============================================================================
// 日志属性构造函数
// =============================================================================

// AttrGroupID 返回分组 ID 属性
func AttrGroupID(id uint64) slog.Attr {
	return slog.Uint64(attrKeyGroupID, id)
}

// AttrSlot 返回槽位下标属性
func AttrSlot(i int) slog.Attr {
	return slog.Int(attrKeySlot, i)
}

// AttrCount 返回计数属性
func AttrCount(n int) slog.Attr {
	return slog.Int(attrKeyCount, n)
}

// AttrError 返回错误属性，err 为 nil 时返回空属性（会被 slog 忽略）
func AttrError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(attrKeyError, err.Error())
}
