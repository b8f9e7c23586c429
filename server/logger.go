package server

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；InitLogger 之前为 Nop，测试里可直接替换
var Log = zap.NewNop().Sugar()

// LogOptions 日志输出配置
type LogOptions struct {
	File   string // 日志文件路径，如 "app.log"；为空则不写文件
	Level  string // debug/info/warn/error
	Stderr bool   // 同时输出到标准错误
}

// InitLogger 初始化 zap：文件走 lumberjack 滚动，可选同时输出到 stderr
func InitLogger(o LogOptions) error {
	level := zapcore.InfoLevel
	if o.Level != "" {
		lv, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return err
		}
		level = lv
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	var cores []zapcore.Core
	if o.File != "" {
		// 10MB 每文件，保留 3 个备份，最多 7 天
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), level))
	}
	if o.Stderr || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
