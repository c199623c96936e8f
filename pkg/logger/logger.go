package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"omninet-lottery/backend/config"
)

// NewLogger 根据配置初始化 Zap 日志实例
// 返回的 AtomicLevel 可在配置热更新时调整日志级别
func NewLogger(cfg *config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}
	atom := zap.NewAtomicLevelAt(level)

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if cfg.File != "" {
		// 文件输出统一使用 JSON，便于采集
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), atom)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logger, atom, nil
}

// SetLevel 热更新日志级别，非法级别时保持原值
func SetLevel(atom zap.AtomicLevel, level string) error {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("无效的日志级别 %q: %w", level, err)
	}
	atom.SetLevel(l)
	return nil
}
