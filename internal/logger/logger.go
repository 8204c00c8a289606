package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MessageKey is the JSON key holding the log message. Every entry names the
// step of a scoring, iteration or ranking run that produced it.
const MessageKey = "step"

// New builds the application logger on stderr, leaving stdout to reports
// and revised documents.
func New(json bool, debug bool) (*zap.Logger, error) {
	return NewWithSink(zapcore.Lock(os.Stderr), json, debug), nil
}

// NewWithSink builds the application logger on sink. json switches from the
// console encoder to JSON lines; debug enables prompt and per-iteration
// entries.
func NewWithSink(sink zapcore.WriteSyncer, json bool, debug bool) *zap.Logger {
	enc := encoderConfig()

	encoder := zapcore.NewConsoleEncoder(enc)
	if json {
		encoder = zapcore.NewJSONEncoder(enc)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(sink))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     MessageKey,
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// TruncateForLog shortens s to limit runes, appending an ellipsis when
// truncated. AI prompts and responses go through it before being logged.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
