package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "mara-shop"

// Options 日志输出配置，零值字段使用默认值
type Options struct {
	Level      string
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Filename) == "" {
		o.Filename = "app.log"
	}
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = 100
	}
	if o.MaxBackups <= 0 {
		o.MaxBackups = 7
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = 30
	}
	return o
}

// L 全局结构化日志实例
var L *zap.Logger

var fallback = sync.OnceValue(func() *zap.Logger {
	return build(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), zapcore.InfoLevel)
})

// Init 初始化全局日志
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	zap.ReplaceGlobals(L)
	return L
}

// New 创建日志实例：debug 模式输出到控制台，其余模式以 JSON 写入滚动文件
func New(mode string, options Options) *zap.Logger {
	options = options.withDefaults()
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(options.Level, debug)

	if debug {
		return build(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), level)
	}
	sink, err := rotatingSink(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed, fallback to stdout: %v\n", err)
		sink = zapcore.Lock(os.Stdout)
	}
	return build(zapcore.NewJSONEncoder(encoderConfig()), sink, level)
}

// resolveLevel 显式配置优先，否则 debug 模式为 debug 级别
func resolveLevel(raw string, debug bool) zapcore.Level {
	if level, err := zapcore.ParseLevel(strings.TrimSpace(raw)); err == nil && raw != "" {
		return level
	}
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// StdLogger 返回兼容标准库 log 的 logger
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Z 返回可用的结构化日志实例，未初始化时使用控制台兜底
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	return fallback()
}

// S 返回可用的 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// Named 返回带组件名的 SugaredLogger
func Named(component string) *zap.SugaredLogger {
	if strings.TrimSpace(component) == "" {
		return S()
	}
	return S().Named(component)
}

// SW 返回带上下文字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	return S().With(kv...)
}

// Debugw 输出 debug 级别日志
func Debugw(message string, kv ...interface{}) { S().Debugw(message, kv...) }

// Infow 输出 info 级别日志
func Infow(message string, kv ...interface{}) { S().Infow(message, kv...) }

// Warnw 输出 warn 级别日志
func Warnw(message string, kv ...interface{}) { S().Warnw(message, kv...) }

// Errorw 输出 error 级别日志
func Errorw(message string, kv ...interface{}) { S().Errorw(message, kv...) }

// Sync 刷新缓冲日志
func Sync() error {
	return Z().Sync()
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func build(encoder zapcore.Encoder, sink zapcore.WriteSyncer, level zapcore.LevelEnabler) *zap.Logger {
	return zap.New(zapcore.NewCore(encoder, sink, level),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("service", serviceName)),
	)
}

// rotatingSink 以 lumberjack 按大小切割日志文件；未配置目录时写入 ./logs
func rotatingSink(options Options) (zapcore.WriteSyncer, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve workdir failed: %w", err)
		}
		dir = filepath.Join(wd, "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}
	path := filepath.Join(dir, strings.TrimSpace(options.Filename))
	// 提前探测文件可写，避免运行期静默丢日志
	probe, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file failed: %w", err)
	}
	_ = probe.Close()
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    options.MaxSizeMB,
		MaxBackups: options.MaxBackups,
		MaxAge:     options.MaxAgeDays,
		Compress:   options.Compress,
	}), nil
}
