// Package server implements the SFTP server lifecycle on top of the container
// runtime, the credential store and the network preference.
//
// A Server is never stored as a whole. Every query joins the runtime's live
// listing with the stored credentials, and every operation on an existing
// name first asks the runtime whether the container is one of ours.
package server

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Server states.
const (
	StatusRunning    = "running"
	StatusStopped    = "stopped"
	StatusNotCreated = "not_created"
	StatusNotSFTP    = "not_sftp"
)

// Sentinels returned by Manager.Status in place of a runtime state.
const (
	StateNotSFTP    = "not sftp"
	StateNotCreated = "not created"
)

var (
	// ErrNotManaged is returned for names that are missing or belong to a
	// container of another image.
	ErrNotManaged = errors.New("not an SFTP container (atmoz/sftp)")
	// ErrInvalidSpec wraps every Spec validation failure.
	ErrInvalidSpec = errors.New("invalid server spec")
	// ErrNoCredentials is returned when an operation needs stored
	// credentials that do not exist.
	ErrNoCredentials = errors.New("no stored credentials")
	// ErrNotRunning is returned when a server has no running container with
	// a published port.
	ErrNotRunning = errors.New("not running with a published port")
)

// Server is a managed SFTP server as seen right now.
type Server struct {
	Name          string     `json:"name"`
	Port          uint16     `json:"port"`
	HostPath      string     `json:"host_path"`
	ContainerPath string     `json:"container_path"`
	Username      string     `json:"username"`
	Password      string     `json:"password"`
	Status        string     `json:"status"`
	CreatedAt     *time.Time `json:"created_at"`
}

// Spec is a request to create a server.
type Spec struct {
	Name          string
	Port          uint16
	HostPath      string
	ContainerPath string
	Username      string
	Password      string
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Validate checks s without touching the runtime.
func (s Spec) Validate() error {
	if !namePattern.MatchString(s.Name) {
		return fmt.Errorf("%w: name %q must start with a letter or digit and contain only letters, digits, '_', '.' or '-'", ErrInvalidSpec, s.Name)
	}
	if s.Port == 0 {
		return fmt.Errorf("%w: port must be between 1 and 65535", ErrInvalidSpec)
	}
	// The image splits its user argument on ':'.
	if s.Username == "" || strings.ContainsAny(s.Username, ": ") {
		return fmt.Errorf("%w: username must be non-empty without ':' or spaces", ErrInvalidSpec)
	}
	if s.Password == "" || strings.Contains(s.Password, ":") {
		return fmt.Errorf("%w: password must be non-empty without ':'", ErrInvalidSpec)
	}
	if strings.TrimSpace(s.HostPath) == "" {
		return fmt.Errorf("%w: host path is required", ErrInvalidSpec)
	}
	if !strings.HasPrefix(s.ContainerPath, "/") {
		return fmt.Errorf("%w: container path %q must be absolute", ErrInvalidSpec, s.ContainerPath)
	}
	return nil
}

// normalizeHostPath converts Windows separators to forward slashes, the form
// the runtime accepts on every platform.
func normalizeHostPath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// StatusOf maps a Manager.Status result onto the Server status values.
func StatusOf(state string) string {
	switch state {
	case StatusRunning:
		return StatusRunning
	case StateNotSFTP:
		return StatusNotSFTP
	case StateNotCreated:
		return StatusNotCreated
	default:
		return StatusStopped
	}
}
