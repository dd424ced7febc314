package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where and how verbosely the process logs
type Config struct {
	Level      string // debug, info, warn, error
	File       string // optional path; empty logs to stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init builds the global logger. Safe to call more than once; the last call wins.
func Init(cfg Config) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	writers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.File != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(writers...),
		level,
	)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	global = l
	mu.Unlock()
	return l
}

// L returns the global logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Set replaces the global logger (tests use zaptest/observer loggers)
func Set(l *zap.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// Sync flushes buffered entries; call before exit
func Sync() {
	_ = L().Sync()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
