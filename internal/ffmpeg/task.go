package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Result is the outcome of one process run.
type Result struct {
	Args    []string
	Stderr  string
	Elapsed time.Duration
	Err     error // *ProcessError on failure
}

// Task is a process started by Start. Its output is captured and handed
// over in full once it exits.
type Task struct {
	args []string
	done chan struct{}
	res  Result
}

// Start launches argv in the background. When tee is non-nil stderr is also
// streamed there as it is produced.
func Start(ctx context.Context, argv []string, tee io.Writer) *Task {
	t := &Task{args: argv, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.res = run(ctx, argv, tee)
	}()
	return t
}

// Done is closed when the process has exited.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the process exits and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.res
}

// Run is Start followed by Wait.
func Run(ctx context.Context, argv []string, tee io.Writer) Result {
	return Start(ctx, argv, tee).Wait()
}

func run(ctx context.Context, argv []string, tee io.Writer) Result {
	start := time.Now()
	res := Result{Args: argv}
	if len(argv) == 0 {
		res.Err = &ProcessError{ExitCode: -1, Err: errors.New("empty command")}
		return res
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stderrBuf bytes.Buffer
	if tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	res.Elapsed = time.Since(start)
	res.Stderr = stderrBuf.String()
	if err != nil {
		pe := &ProcessError{
			Tool:     filepath.Base(argv[0]),
			Args:     argv,
			ExitCode: -1,
			Stderr:   res.Stderr,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			pe.ExitCode = exitErr.ExitCode()
		}
		res.Err = pe
	}
	return res
}

// CommandLine renders argv as a line that can be pasted into a POSIX shell.
func CommandLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=+,@%", r)
}
