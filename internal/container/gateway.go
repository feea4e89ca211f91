// Package container drives the docker or podman CLI on behalf of sftpman.
//
// A Gateway runs one subprocess per operation and parses its text output.
// It is also the only place that decides whether a container belongs to
// sftpman: IsManaged inspects the container's image reference on every call
// and nothing is cached.
package container

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/majorcontext/sftpman/internal/execx"
	"github.com/majorcontext/sftpman/internal/log"
)

// DefaultImage is the SFTP server image sftpman manages.
const DefaultImage = "atmoz/sftp"

const listFormat = "{{.Names}}|{{.Status}}|{{.Ports}}|{{.CreatedAt}}"

// Options configures a Gateway. Zero values select defaults.
type Options struct {
	// Binary is the runtime CLI, "docker" or "podman".
	Binary string
	// Image is the managed image reference without a tag.
	Image  string
	Runner execx.Runner
	// Timeout bounds every command except create.
	Timeout time.Duration
	// CreateTimeout bounds create, which may pull the image first.
	CreateTimeout time.Duration
}

// Gateway executes runtime subcommands against managed containers.
type Gateway struct {
	bin           string
	image         string
	runner        execx.Runner
	timeout       time.Duration
	createTimeout time.Duration
}

// NewGateway returns a Gateway for opts.
func NewGateway(opts Options) *Gateway {
	g := &Gateway{
		bin:           opts.Binary,
		image:         opts.Image,
		runner:        opts.Runner,
		timeout:       opts.Timeout,
		createTimeout: opts.CreateTimeout,
	}
	if g.bin == "" {
		g.bin = RuntimeDocker
	}
	if g.image == "" {
		g.image = DefaultImage
	}
	if g.runner == nil {
		g.runner = execx.Exec{}
	}
	if g.createTimeout <= 0 {
		g.createTimeout = g.timeout
	}
	return g
}

// Binary returns the runtime CLI being driven.
func (g *Gateway) Binary() string { return g.bin }

// Image returns the managed image reference.
func (g *Gateway) Image() string { return g.image }

func (g *Gateway) run(ctx context.Context, timeout time.Duration, args []string, secrets ...string) (execx.Output, error) {
	ctx, cancel := execx.WithTimeout(ctx, timeout)
	defer cancel()

	logArgs := log.RedactArgs(args, secrets...)
	start := time.Now()
	out, err := g.runner.Run(ctx, g.bin, args...)
	if err != nil {
		log.Debug("runtime command failed",
			"runtime", g.bin,
			"args", logArgs,
			"duration", time.Since(start),
			"error", err)
		return out, classify(err)
	}
	log.Debug("runtime command",
		"runtime", g.bin,
		"args", logArgs,
		"duration", time.Since(start))
	return out, nil
}

// Version returns the runtime's version banner.
func (g *Gateway) Version(ctx context.Context) (string, error) {
	out, err := g.run(ctx, g.timeout, []string{"--version"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// Available reports whether the runtime CLI can be executed.
func (g *Gateway) Available(ctx context.Context) bool {
	_, err := g.Version(ctx)
	return err == nil
}

// IsManaged reports whether name is a container created from the managed
// image. Every failure, including a missing container, reports false.
func (g *Gateway) IsManaged(ctx context.Context, name string) bool {
	// A leading dash would be parsed as a flag by the runtime.
	if name == "" || strings.HasPrefix(name, "-") {
		return false
	}
	out, err := g.run(ctx, g.timeout, []string{"inspect", "--format", "{{.Config.Image}}", name})
	if err != nil {
		return false
	}
	return MatchesImage(string(out.Stdout), g.image)
}

// List returns every container created from the managed image in one call.
func (g *Gateway) List(ctx context.Context) ([]Entry, error) {
	out, err := g.run(ctx, g.timeout, []string{
		"ps", "-a",
		"--filter", "ancestor=" + g.image,
		"--format", listFormat,
	})
	if err != nil {
		return nil, err
	}
	return ParseList(string(out.Stdout)), nil
}

// Create runs a new detached container and returns its ID.
func (g *Gateway) Create(ctx context.Context, spec RunSpec) (string, error) {
	args, err := BuildRunArgs(g.image, spec)
	if err != nil {
		return "", err
	}
	out, err := g.run(ctx, g.createTimeout, args, spec.Password)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// Start starts a stopped container.
func (g *Gateway) Start(ctx context.Context, name string) error {
	_, err := g.run(ctx, g.timeout, []string{"start", name})
	return err
}

// Stop stops a container. Stopping a stopped container succeeds.
func (g *Gateway) Stop(ctx context.Context, name string) error {
	_, err := g.run(ctx, g.timeout, []string{"stop", name})
	return err
}

// Remove force-removes a container, running or not.
func (g *Gateway) Remove(ctx context.Context, name string) error {
	_, err := g.run(ctx, g.timeout, []string{"rm", "-f", name})
	return err
}

// State returns the runtime's state string ("running", "exited", ...).
func (g *Gateway) State(ctx context.Context, name string) (string, error) {
	out, err := g.run(ctx, g.timeout, []string{"inspect", "--format", "{{.State.Status}}", name})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

// Logs returns the last tail lines of the container's output, stdout first
// then stderr. A non-positive tail returns everything.
func (g *Gateway) Logs(ctx context.Context, name string, tail int) (string, error) {
	n := "all"
	if tail > 0 {
		n = strconv.Itoa(tail)
	}
	out, err := g.run(ctx, g.timeout, []string{"logs", "--tail", n, name})
	if err != nil {
		return "", err
	}
	return string(out.Stdout) + string(out.Stderr), nil
}

// ListDir lists path inside the container. An empty path lists "/".
func (g *Gateway) ListDir(ctx context.Context, name, path string) ([]FileEntry, error) {
	if path == "" {
		path = "/"
	}
	out, err := g.run(ctx, g.timeout, []string{"exec", name, "ls", "-la", "--", path})
	if err != nil {
		return nil, err
	}
	return ParseDirListing(path, string(out.Stdout)), nil
}
