package xfsevent

import "errors"

var (
	// ErrNoPaths 未指定任何监视路径。
	ErrNoPaths = errors.New("xfsevent: no paths to watch")

	// ErrWatchFailed 监视路径注册失败（重试耗尽）。
	ErrWatchFailed = errors.New("xfsevent: failed to watch path")

	// ErrClosed Watcher 已关闭。
	// Close 第二次及后续调用返回此错误。
	ErrClosed = errors.New("xfsevent: watcher is closed")

	// ErrAlreadyAttached Watcher 已注册到某个 WaitSet。
	ErrAlreadyAttached = errors.New("xfsevent: watcher already attached")
)
