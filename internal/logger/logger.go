package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger so callers log with alternating key/value pairs.
type Logger struct {
	*zap.SugaredLogger
}

// Production returns a JSON logger at INFO level.
func Production() *Logger {
	return New(false)
}

// Development returns a console logger at DEBUG level with colored levels.
func Development() *Logger {
	return New(true)
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// New builds the relay logger. Debug selects the development encoder and level.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	base, err := cfg.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		base = zap.NewExample()
	}

	return &Logger{SugaredLogger: base.Sugar()}
}

// NewFromEnv checks DEBUG_MODE to pick between Development and Production.
func NewFromEnv() *Logger {
	v := os.Getenv("DEBUG_MODE")
	return New(v == "true" || v == "1")
}

// WithFields returns a child logger carrying the given key/value pairs.
func (l *Logger) WithFields(fields ...any) *Logger {
	return &Logger{SugaredLogger: l.With(fields...)}
}

// WithError attaches err under the "error" key. A nil err returns l unchanged.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithFields("error", err.Error())
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.Debugw(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.Infow(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.Warnw(msg, fields...)
}

// Error logs at error level; production output includes a stack trace.
func (l *Logger) Error(msg string, fields ...any) {
	l.Errorw(msg, fields...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...any) {
	l.Fatalw(msg, fields...)
}
