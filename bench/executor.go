// bench/executor.go
package bench

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	fwerrors "fwreach/errors"
)

// Executor runs one isolated measurement and returns its stdout.
type Executor interface {
	Run(ctx context.Context, source, target string) ([]byte, error)
}

// ProcessExecutor starts a fresh driver process per trial.
type ProcessExecutor struct {
	Driver string   // path to the fwreach binary
	Args   []string // flags placed before the positional addresses
	Sudo   bool
}

// Command returns the argv for one trial.
func (e *ProcessExecutor) Command(source, target string) []string {
	var argv []string
	if e.Sudo {
		argv = append(argv, "sudo")
	}
	argv = append(argv, e.Driver)
	argv = append(argv, e.Args...)
	return append(argv, source, target)
}

func (e *ProcessExecutor) Run(ctx context.Context, source, target string) ([]byte, error) {
	argv := e.Command(source, target)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, fwerrors.Wrapf(err, fwerrors.KindTrial, "%s: %s", strings.Join(argv, " "), lastLine(stderr.String()))
		}
		return out, fwerrors.Wrapf(err, fwerrors.KindTrial, "start %s", argv[0])
	}
	return out, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
