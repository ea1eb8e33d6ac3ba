// Package log 提供 hostdisco 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，提供简洁的日志 API。
//
// 支持通过环境变量配置：
//   - HOSTDISCO_LOG_LEVEL: 日志级别，支持按组件配置
//     格式: 组件=级别,组件=级别,默认级别
//     示例: discovery/engine=debug,core/ping=warn,info
//   - HOSTDISCO_LOG_FORMAT: 日志格式 (text 或 json)
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

// 环境变量名
const (
	EnvLogLevel  = "HOSTDISCO_LOG_LEVEL"
	EnvLogFormat = "HOSTDISCO_LOG_FORMAT"
)

// levelConfig 组件级别配置
type levelConfig struct {
	defaultLevel slog.Level
	components   map[string]slog.Level
}

var (
	levelsMu sync.RWMutex
	levels   = levelConfig{defaultLevel: slog.LevelInfo, components: map[string]slog.Level{}}
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// Default 返回默认 logger
func Default() *slog.Logger {
	return slog.Default()
}

// New 创建新的文本 logger
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewJSON 创建 JSON 格式的 logger
func NewJSON(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetOutputWithLevel 同时设置日志输出目标和级别
//
// 组件级别仍然生效，level 只影响默认级别。
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	levelsMu.Lock()
	levels.defaultLevel = level
	levelsMu.Unlock()

	// handler 只做最低级别过滤，组件级别由 LazyLogger 判断
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if strings.EqualFold(os.Getenv(EnvLogFormat), "json") {
		slog.SetDefault(NewJSON(w, opts))
		return
	}
	slog.SetDefault(New(w, opts))
}

// SetOutput 设置日志输出目标
func SetOutput(w io.Writer) {
	SetOutputWithLevel(w, DefaultLevel())
}

// SetLevel 设置默认日志级别
func SetLevel(level slog.Level) {
	levelsMu.Lock()
	levels.defaultLevel = level
	levelsMu.Unlock()
}

// DefaultLevel 返回默认日志级别
func DefaultLevel() slog.Level {
	levelsMu.RLock()
	defer levelsMu.RUnlock()
	return levels.defaultLevel
}

// SetComponentLevel 设置单个组件的日志级别
func SetComponentLevel(component string, level slog.Level) {
	levelsMu.Lock()
	levels.components[component] = level
	levelsMu.Unlock()
}

// LevelFor 返回组件的生效级别
func LevelFor(component string) slog.Level {
	levelsMu.RLock()
	defer levelsMu.RUnlock()
	if l, ok := levels.components[component]; ok {
		return l
	}
	return levels.defaultLevel
}

// ParseLevelConfig 解析级别配置字符串并应用
//
// 格式: component=level,component=level,defaultLevel
func ParseLevelConfig(s string) {
	levelsMu.Lock()
	defer levelsMu.Unlock()

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if k, v, ok := strings.Cut(part, "="); ok {
			if lvl, ok := ParseLevel(strings.TrimSpace(v)); ok {
				levels.components[strings.TrimSpace(k)] = lvl
			}
			continue
		}
		if lvl, ok := ParseLevel(part); ok {
			levels.defaultLevel = lvl
		}
	}
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时动态切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("discovery/engine")
//	logger.Info("hello")
type LazyLogger struct {
	component string
}

func (l *LazyLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if level < LevelFor(l.component) {
		return
	}
	slog.Default().With("component", l.component).Log(ctx, level, msg, args...)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// Enabled 组件是否启用指定级别
func (l *LazyLogger) Enabled(level slog.Level) bool {
	return level >= LevelFor(l.component)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// ============================================================================
//                              初始化
// ============================================================================

func init() {
	if s := os.Getenv(EnvLogLevel); s != "" {
		ParseLevelConfig(s)
	}
	SetOutputWithLevel(os.Stderr, DefaultLevel())
}
