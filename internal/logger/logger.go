// Package logger wraps zap with key/value helpers and redaction of the
// personal fields a contact carries.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrUnknownMode indicates a log mode other than off, dev, or prod.
var ErrUnknownMode = errors.New("logger: unknown mode")

const redacted = "[REDACTED]"

// Logger is a sugared zap logger that redacts contact PII from key/value pairs.
type Logger struct {
	sugar  *zap.SugaredLogger
	redact bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithRedaction enables or disables PII redaction. Enabled by default.
func WithRedaction(on bool) Option {
	return func(l *Logger) { l.redact = on }
}

// New builds a Logger writing to w (os.Stderr when nil).
// Mode "off" (or empty) discards everything, "dev" uses the console encoder,
// "prod" uses the JSON encoder.
func New(mode string, w io.Writer, opts ...Option) (*Logger, error) {
	l := &Logger{redact: true}
	for _, opt := range opts {
		opt(l)
	}

	var enc zapcore.Encoder
	switch strings.ToLower(mode) {
	case "", "off":
		l.sugar = zap.NewNop().Sugar()
		return l, nil
	case "dev":
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case "prod":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("%w %q (want off, dev, or prod)", ErrUnknownMode, mode)
	}

	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	l.sugar = zap.New(core).Sugar()
	return l, nil
}

// Nop returns a Logger that discards all output.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), redact: true}
}

// Sync flushes buffered entries. Errors are ignored: stderr and test buffers
// do not support fsync on every platform.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, l.sanitize(keysAndValues)...)
}

// With returns a child Logger that always includes the given pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(l.sanitize(keysAndValues)...), redact: l.redact}
}

func (l *Logger) sanitize(kv []any) []any {
	if !l.redact || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, kv[i], sanitizeValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val any) any {
	switch key {
	case "phone":
		s, ok := val.(string)
		if !ok {
			return redacted
		}
		return maskPhone(s)
	case "first_name", "last_name", "address":
		return redacted
	default:
		return val
	}
}

// maskPhone keeps the last four characters and stars the rest.
func maskPhone(s string) string {
	n := utf8.RuneCountInString(s)
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	runes := []rune(s)
	return strings.Repeat("*", n-4) + string(runes[n-4:])
}
