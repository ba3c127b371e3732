// Package log 提供 go-quicboot 统一日志接口
//
// 基于 Go 标准库 log/slog 封装。各包通过 Logger(component) 获取
// 带组件名的 LazyLogger，运行时可通过 Setup 切换输出格式与级别。
//
// 环境变量 QUICBOOT_LOG_LEVEL 优先于配置文件中的级别。
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// EnvLevel 日志级别环境变量
const EnvLevel = "QUICBOOT_LOG_LEVEL"

var setupMu sync.Mutex

// Options 日志输出选项
type Options struct {
	// Output 输出目标，nil 时为 stderr
	Output io.Writer

	// Level 日志级别名称：debug/info/warn/error
	Level string

	// Format 输出格式：text 或 json
	Format string

	// AddSource 是否添加源码位置
	AddSource bool
}

// Setup 按选项重建默认 logger
//
// 所有 LazyLogger 在下一次调用时即使用新 handler。
func Setup(opts Options) {
	setupMu.Lock()
	defer setupMu.Unlock()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level, ok := ParseLevel(opts.Level)
	if !ok {
		level = LevelInfo
	}
	if env := os.Getenv(EnvLevel); env != "" {
		if l, ok := ParseLevel(env); ok {
			level = l
		}
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, hopts)
	}
	slog.SetDefault(slog.New(h))
}

// SetOutputWithLevel 同时设置日志输出目标和级别（文本格式）
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	setupMu.Lock()
	defer setupMu.Unlock()
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Discard 丢弃所有日志（用于测试）
func Discard() {
	SetOutputWithLevel(io.Discard, LevelError+4)
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler。
//
//	var logger = log.Logger("core/identity")
//	logger.Info("身份已生成", "hostnames", names)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.base().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.base().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.base().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.base().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.base().DebugContext(ctx, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.base().WarnContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}
