package log

import (
	"fmt"
	"os"

	"academy/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	return newLogger(conf, zapcore.AddSync(os.Stdout), zapcore.AddSync(os.Stderr))
}

// newLogger：< warn 寫到 out，>= warn 寫到errOut（皆受全域門檻控制）
func newLogger(conf *config.Configuration, out, errOut zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := ParseLevel(conf.Log.Level)
	if err != nil {
		return nil, err
	}
	atomic := zap.NewAtomicLevelAt(lvl)

	// Encoder 設定（JSON、ISO8601 時間、caller/level 鍵等）
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"
	encCfg.TimeKey = "ts"
	encCfg.CallerKey = "caller"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoder := zapcore.NewJSONEncoder(encCfg)

	stdoutLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l < zapcore.WarnLevel
	})
	stderrLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, out, stdoutLevel),
		zapcore.NewCore(encoder, errOut, stderrLevel),
	)

	// caller 一律顯示；stacktrace 只在 Error+ 時出現
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	fields := []zap.Field{zap.String("min_level", lvl.String())}
	if conf.App.Name != "" {
		logger = logger.With(zap.String("service", conf.App.Name))
	}
	logger.Debug("zap logger initialized", fields...)

	return logger, nil
}

// ParseLevel 空字串視為 info，不認得的值回傳錯誤
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zap.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.InfoLevel, fmt.Errorf("invalid LOG__LEVEL %q: %w", level, err)
	}
	return lvl, nil
}
