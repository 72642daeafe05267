package logging

import (
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mvcclock/src/model"
)

// New builds a console logger writing to w at the named level ("debug",
// "info", ...). Without a writer there is no console to log to, so the
// returned logger discards everything.
func New(w io.Writer, level string) (*zap.SugaredLogger, error) {
	if w == nil {
		return Nop(), nil
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// TimeLogger observes a model and logs every time change at debug level
// while enabled.
type TimeLogger struct {
	log     *zap.SugaredLogger
	enabled atomic.Bool
}

// NewTimeLogger builds a disabled TimeLogger.
func NewTimeLogger(log *zap.SugaredLogger) *TimeLogger {
	if log == nil {
		log = Nop()
	}
	return &TimeLogger{log: log.With("source", "time_logger")}
}

// Enable starts logging time changes.
func (l *TimeLogger) Enable() {
	l.enabled.Store(true)
}

// Disable stops logging time changes.
func (l *TimeLogger) Disable() {
	l.enabled.Store(false)
}

// Enabled reports whether time changes are logged.
func (l *TimeLogger) Enabled() bool {
	return l.enabled.Load()
}

// Observe logs the new time.
func (l *TimeLogger) Observe(_ *model.Model, t time.Time) error {
	if !l.enabled.Load() {
		return nil
	}
	l.log.Debugw("time changed", "time", t.Format(time.RFC3339))
	return nil
}
