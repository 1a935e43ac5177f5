// waitsetdemo 演示 WaitSet 条件多路复用原语的典型用法。
//
// 用法:
//
//	waitsetdemo [选项]
//
// 选项:
//
//	-c, --config          配置文件路径 (yaml/json，可选)
//	    --capacity        WaitSet 容量 (默认: 8)
//	    --activate-every  激活源的触发间隔 (默认: 1s)
//	    --cron            定时触发源的 cron 表达式 (可选，如 "@every 2s")
//	    --watch           文件事件触发源的监视路径 (可重复，可选)
//	    --run-for         运行时长，0 表示直到收到信号 (默认: 0)
//	    --log-level       日志级别 (默认: info)
//	    --log-format      日志格式 text/json (默认: text)
//
// 演示内容:
//
//	一个激活源（activate / perform-action 两个事件，分属不同 group id）
//	由生产者 goroutine 周期性 Signal；可选的 cron 触发源与文件事件
//	触发源共用同一个 WaitSet。消费循环阻塞在 Wait 上，按 group id
//	分类分发、调用回调、复位闩锁。收到 SIGINT/SIGTERM 优雅退出。
//
// 退出码:
//
//	0: 正常退出（信号或 --run-for 到期）
//	1: 运行失败
//	2: 参数或配置错误
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/waitkit/pkg/config/xconf"
	"github.com/omeyang/waitkit/pkg/observability/xlog"
)

// 版本信息（可通过 -ldflags 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// 退出码
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	app := createApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "waitsetdemo:", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

// usageError 参数或配置错误，退出码 2
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// createApp 创建 CLI 应用
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "waitsetdemo",
		Usage:   "condition-multiplexing waitset demo",
		Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (yaml/json)",
			},
			&cli.IntFlag{
				Name:  "capacity",
				Usage: "waitset capacity",
				Value: 8,
			},
			&cli.DurationFlag{
				Name:  "activate-every",
				Usage: "interval between producer activations",
				Value: time.Second,
			},
			&cli.StringFlag{
				Name:  "cron",
				Usage: "cron spec for the timer trigger source",
			},
			&cli.StringSliceFlag{
				Name:  "watch",
				Usage: "paths for the file-event trigger source",
			},
			&cli.DurationFlag{
				Name:  "run-for",
				Usage: "total run duration, 0 = until signal",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text/json)",
				Value: "text",
			},
		},
		Action: demoAction,
	}
}

// demoConfig 演示配置（配置文件优先于命令行默认值）
type demoConfig struct {
	Capacity      int           `koanf:"capacity"`
	ActivateEvery time.Duration `koanf:"activate_every"`
	Cron          string        `koanf:"cron"`
	Watch         []string      `koanf:"watch"`
	RunFor        time.Duration `koanf:"run_for"`
	LogLevel      string        `koanf:"log_level"`
	LogFormat     string        `koanf:"log_format"`
}

// loadConfig 合并命令行与配置文件
func loadConfig(cmd *cli.Command) (*demoConfig, error) {
	dc := &demoConfig{
		Capacity:      cmd.Int("capacity"),
		ActivateEvery: cmd.Duration("activate-every"),
		Cron:          cmd.String("cron"),
		Watch:         cmd.StringSlice("watch"),
		RunFor:        cmd.Duration("run-for"),
		LogLevel:      cmd.String("log-level"),
		LogFormat:     cmd.String("log-format"),
	}

	path := cmd.String("config")
	if path == "" {
		return dc, nil
	}
	cfg, err := xconf.New(path)
	if err != nil {
		return nil, &usageError{err}
	}
	if err := cfg.Unmarshal("", dc); err != nil {
		return nil, &usageError{err}
	}
	return dc, nil
}

func demoAction(ctx context.Context, cmd *cli.Command) error {
	dc, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, cleanup, err := xlog.New().
		SetLevelString(dc.LogLevel).
		SetFormat(dc.LogFormat).
		Build()
	if err != nil {
		return &usageError{err}
	}
	defer func() { _ = cleanup() }()

	// run id 用于日志关联，一次运行一个
	logger = logger.With(slog.String("run_id", uuid.NewString()))

	if dc.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dc.RunFor)
		defer cancel()
	}

	return runDemo(ctx, dc, logger)
}
