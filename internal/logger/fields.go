package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldRunID     = "run_id"
	FieldStrategy  = "strategy"
	FieldIteration = "iteration"
	FieldPosting   = "posting_id"
)

// Pairs turns alternating keys and values into string fields. Pairs with a
// blank key or value are skipped, as is a trailing key without a value.
func Pairs(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, value := strings.TrimSpace(kv[i]), strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With attaches fields to l. A nil logger becomes a no-op one.
func With(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// WithCommonFields tags every entry with the AI provider and model in use.
func WithCommonFields(l *zap.Logger, provider, model string) *zap.Logger {
	return With(l, Pairs(FieldProvider, provider, FieldModel, model)...)
}

// WithRun tags every entry with the iteration run identifier and strategy.
func WithRun(l *zap.Logger, runID, strategy string) *zap.Logger {
	return With(l, Pairs(FieldRunID, runID, FieldStrategy, strategy)...)
}
