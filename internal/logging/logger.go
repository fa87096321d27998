package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a leveled logger safe for concurrent workers.
type Logger struct {
	s *zap.SugaredLogger
}

// New creates a console logger writing to stderr at the given level
// ("debug", "info", "warn" or "error").
func New(level string) (*Logger, error) {
	return NewWriter(os.Stderr, level)
}

// NewWriter creates a console logger writing to w.
func NewWriter(w io.Writer, level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	enc.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), lvl)
	return &Logger{s: zap.New(core).Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// With returns a child logger that adds key/value context to every entry.
func (lg *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{s: lg.s.With(keysAndValues...)}
}

// Debugf writes a debug message.
func (lg *Logger) Debugf(format string, args ...any) {
	lg.s.Debugf(format, args...)
}

// Infof writes an informational message.
func (lg *Logger) Infof(format string, args ...any) {
	lg.s.Infof(format, args...)
}

// Warnf writes a warning message.
func (lg *Logger) Warnf(format string, args ...any) {
	lg.s.Warnf(format, args...)
}

// Errorf writes an error message.
func (lg *Logger) Errorf(format string, args ...any) {
	lg.s.Errorf(format, args...)
}

// Sync flushes buffered entries.
func (lg *Logger) Sync() error {
	return lg.s.Sync()
}
