package container

import (
	"errors"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/majorcontext/sftpman/internal/execx"
)

// notFoundError marks a runtime failure caused by a missing container while
// keeping the runtime's message untouched.
type notFoundError struct {
	err error
}

func (e *notFoundError) Error() string { return e.err.Error() }

// NotFound satisfies the errdefs not-found interface.
func (e *notFoundError) NotFound() {}

func (e *notFoundError) Unwrap() []error {
	return []error{errdefs.ErrNotFound, e.err}
}

var notFoundMarkers = []string{
	"no such container",
	"no such object",
	"no container with name or id",
}

// classify tags exit failures whose stderr says the container is missing so
// callers can test them with errdefs.IsNotFound.
func classify(err error) error {
	var ee *execx.Error
	if !errors.As(err, &ee) || ee.Kind != execx.KindExit {
		return err
	}
	stderr := strings.ToLower(ee.Stderr)
	for _, m := range notFoundMarkers {
		if strings.Contains(stderr, m) {
			return &notFoundError{err: err}
		}
	}
	return err
}
