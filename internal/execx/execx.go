// Package execx runs external commands and classifies their failures.
//
// Every command the manager shells out to (the container runtime CLI and the
// host's address utilities) goes through a Runner. Failures come back as *Error
// values whose Kind distinguishes a process that could not be started, one
// that exited non-zero, one that was killed by a deadline and one whose
// context was cancelled.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Kind classifies a command failure.
type Kind int

const (
	// KindSpawn means the process could not be launched.
	KindSpawn Kind = iota + 1
	// KindExit means the process ran and exited non-zero.
	KindExit
	// KindTimeout means the process was killed because its deadline passed.
	KindTimeout
	// KindCanceled means the caller cancelled the context before or while
	// the process ran.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindExit:
		return "exit"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Sentinels matched with errors.Is against an *Error.
var (
	ErrSpawn    = errors.New("command could not be started")
	ErrExit     = errors.New("command exited with non-zero status")
	ErrTimeout  = errors.New("command timed out")
	ErrCanceled = errors.New("command canceled")
)

// Error describes a failed command. Stderr holds the captured error stream
// verbatim and is what Error() reports when it is non-empty.
type Error struct {
	Kind    Kind
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return e.Stderr
	}
	switch e.Kind {
	case KindTimeout:
		return e.Command + ": " + ErrTimeout.Error()
	case KindCanceled:
		return e.Command + ": " + ErrCanceled.Error()
	case KindSpawn, KindExit:
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return e.Command + ": command failed"
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	var kind error
	switch e.Kind {
	case KindSpawn:
		kind = ErrSpawn
	case KindExit:
		kind = ErrExit
	case KindTimeout:
		kind = ErrTimeout
	case KindCanceled:
		kind = ErrCanceled
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

// Output is what a successful command wrote.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes a command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// Exec runs commands with os/exec.
type Exec struct{}

// Run executes name with args, capturing stdout and stderr separately.
func (Exec) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}
	return Output{}, classify(ctx, name, args, stderr.String(), err)
}

func classify(ctx context.Context, name string, args []string, stderr string, err error) *Error {
	e := &Error{Command: name, Args: args, Stderr: stderr, Err: err}
	if kind, ok := ContextKind(ctx); ok {
		e.Kind = kind
		e.Stderr = ""
		return e
	}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		e.Kind = KindExit
	default:
		e.Kind = KindSpawn
	}
	return e
}

// ContextKind reports how a finished ctx ends a command: KindTimeout for a
// passed deadline, KindCanceled for a cancellation. ok is false while ctx is
// still live.
func ContextKind(ctx context.Context) (kind Kind, ok bool) {
	switch err := ctx.Err(); {
	case err == nil:
		return 0, false
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, true
	default:
		return KindCanceled, true
	}
}

// WithTimeout returns ctx bounded by d. A non-positive d leaves ctx unbounded.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
