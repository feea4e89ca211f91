// Package exectest provides a scripted execx.Runner for tests.
package exectest

import (
	"context"
	"strings"
	"sync"

	"github.com/majorcontext/sftpman/internal/execx"
)

// Response is the canned result for one command line.
type Response struct {
	Stdout string
	Stderr string
	// Err, when set, is returned as-is.
	Err error
	// ExitStderr, when non-empty, makes the command fail with KindExit.
	ExitStderr string
}

// Runner answers commands from a table keyed by the full command line
// ("docker inspect --format {{.Config.Image}} web"). Unknown commands fail
// with KindSpawn so missing script entries are loud.
type Runner struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []string
}

// New returns an empty Runner.
func New() *Runner {
	return &Runner{responses: make(map[string][]Response)}
}

// On queues a response for the command line. Multiple responses for the same
// line are consumed in order; the last one repeats.
func (r *Runner) On(cmdline string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[cmdline] = append(r.responses[cmdline], resp)
	return r
}

// Calls returns every command line run so far.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Called reports whether any call starts with prefix.
func (r *Runner) Called(prefix string) bool {
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// Run implements execx.Runner.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (execx.Output, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	r.mu.Lock()
	r.calls = append(r.calls, line)
	queue, ok := r.responses[line]
	var resp Response
	if ok {
		resp = queue[0]
		if len(queue) > 1 {
			r.responses[line] = queue[1:]
		}
	}
	r.mu.Unlock()

	if kind, done := execx.ContextKind(ctx); done {
		return execx.Output{}, &execx.Error{Kind: kind, Command: name, Args: args, Err: ctx.Err()}
	}
	if !ok {
		return execx.Output{}, &execx.Error{Kind: execx.KindSpawn, Command: name, Args: args, Err: errUnscripted(line)}
	}
	if resp.Err != nil {
		return execx.Output{}, resp.Err
	}
	if resp.ExitStderr != "" {
		return execx.Output{}, &execx.Error{Kind: execx.KindExit, Command: name, Args: args, Stderr: resp.ExitStderr}
	}
	return execx.Output{Stdout: []byte(resp.Stdout), Stderr: []byte(resp.Stderr)}, nil
}

type errUnscripted string

func (e errUnscripted) Error() string { return "unscripted command: " + string(e) }
