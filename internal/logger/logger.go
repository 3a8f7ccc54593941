package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Name is the root logger name; passes and requests log under it.
const Name = "autofill"

// New builds the cli logger. Entries go to stderr since stdout carries the filled page.
// Console output is meant for people, so stack traces are kept for the json encoding only.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:          "console",
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !json,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     encoderConfig(json),
	}
	if json {
		cfg.Encoding = "json"
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	return logger.Named(Name), nil
}

func encoderConfig(json bool) zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		MessageKey: "step",
		NameKey:    "logger",

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:        "time",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	if json {
		ec.StacktraceKey = "stacktrace"
		ec.EncodeDuration = zapcore.MillisDurationEncoder
	}

	return ec
}
