package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNilFunc 服务函数为 nil。
	ErrNilFunc = errors.New("xrun: nil service func")

	// ErrSignal 信号退出的哨兵错误。
	// errors.Is(err, ErrSignal) 可判断 Run 是否因进程信号退出；
	// 具体信号通过 errors.As 取 *SignalError。
	ErrSignal = errors.New("xrun: signal received")
)

// SignalError 表示 Group 因进程信号而退出。
type SignalError struct {
	Signal os.Signal
}

// Error 实现 error 接口。
func (e *SignalError) Error() string {
	return fmt.Sprintf("xrun: received signal %s", e.Signal)
}

// Is 使 errors.Is(err, ErrSignal) 成立。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}
