package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldAction is the structured log field key for the trigger action name.
	FieldAction = "action"
	// FieldCategory is the structured log field key for the profile category being filled.
	FieldCategory = "category"
	// FieldPass is the structured log field key identifying one fill pass.
	FieldPass = "pass_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PassFields describes one fill pass. Empty values are dropped.
func PassFields(passID, action, category string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPass, Value: passID},
		StringField{Key: FieldAction, Value: action},
		StringField{Key: FieldCategory, Value: category},
	)
}

// WithPass attaches the pass fields to the provided logger.
func WithPass(logger *zap.Logger, passID, action, category string) *zap.Logger {
	return WithFields(logger, PassFields(passID, action, category)...)
}
