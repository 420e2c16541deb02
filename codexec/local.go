package codexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single execution when none is configured.
const DefaultTimeout = 30 * time.Second

// Local runs code in an interpreter subprocess on the local machine.
//
// Local provides no isolation beyond the process boundary. It is meant to
// run behind an external sandbox (container, jail, dedicated host); do not
// point it at untrusted code on a machine you care about.
type Local struct {
	Interpreter string        // defaults to "python3"
	Args        []string      // extra args placed before -c
	WorkDir     string        // working directory, empty = inherited
	Timeout     time.Duration // per-execution bound, 0 = DefaultTimeout
}

// NewLocal returns a Local runner with defaults.
func NewLocal() *Local {
	return &Local{Interpreter: "python3", Timeout: DefaultTimeout}
}

// Execute runs the code string as `<interpreter> -c <code>` and captures
// stdout and stderr. Any failure, including a missing interpreter or a
// timeout, is folded into the returned Result.
func (l *Local) Execute(ctx context.Context, code string) Result {
	interpreter := l.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, l.Args...), "-c", code)
	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Dir = l.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Success: err == nil,
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.Stderr = appendLine(res.Stderr, fmt.Sprintf("execution timed out after %s", timeout))
		} else if res.Stderr == "" {
			res.Stderr = err.Error()
		}
	}
	return res
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	return s + "\n" + line
}
