// logging/logging.go
// Package logging builds the zap loggers used by the fwreach binaries.
// Logs go to stderr (or a TUI pane) so that stdout stays reserved for the
// measurement result lines parsed by fwbench.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console-encoded sugared logger writing to w at the given level.
// A nil w means stderr. Unknown levels fall back to info.
func New(level string, w io.Writer) *zap.SugaredLogger {
	if w == nil {
		w = os.Stderr
	}

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
