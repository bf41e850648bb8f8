package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger 构建全局日志器，返回的函数用于在退出前刷新缓冲
func InitLogger(logLevel string) (func(), error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	// 非 debug 级别时不打印调用栈
	cfg.DisableStacktrace = level > zapcore.DebugLevel

	lgr, err := cfg.Build(zap.Fields(zap.String("app", "undercover")))
	if err != nil {
		return nil, fmt.Errorf("构建日志器失败: %w", err)
	}

	restore := zap.ReplaceGlobals(lgr)

	return func() {
		_ = lgr.Sync()
		restore()
	}, nil
}
