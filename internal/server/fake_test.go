package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/majorcontext/sftpman/internal/container"
	"github.com/majorcontext/sftpman/internal/execx"
	"github.com/majorcontext/sftpman/internal/netif"
	"github.com/majorcontext/sftpman/internal/sftpcheck"
)

type fakeContainer struct {
	spec    container.RunSpec
	running bool
	created time.Time
}

// fakeRuntime is an in-memory container runtime. Names in foreign exist but
// were created from another image.
type fakeRuntime struct {
	mu         sync.Mutex
	containers map[string]*fakeContainer
	foreign    map[string]bool
	unlisted   map[string]bool
	available  bool
	listErr    error
	createErr  error
	removeErr  error
	stateErr   error
	files      map[string][]container.FileEntry
	calls      []string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		containers: map[string]*fakeContainer{},
		foreign:    map[string]bool{},
		unlisted:   map[string]bool{},
		available:  true,
		files:      map[string][]container.FileEntry{},
	}
}

func (f *fakeRuntime) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRuntime) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		switch c {
		case "create", "start", "stop", "remove":
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRuntime) Binary() string { return "docker" }

func (f *fakeRuntime) Version(context.Context) (string, error) {
	if !f.available {
		return "", &execx.Error{Kind: execx.KindSpawn, Command: "docker", Err: errors.New("executable file not found in $PATH")}
	}
	return "Docker version 27.0.1", nil
}

func (f *fakeRuntime) IsManaged(_ context.Context, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.containers[name]
	return ok
}

func (f *fakeRuntime) List(context.Context) ([]container.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var entries []container.Entry
	for name, c := range f.containers {
		if f.unlisted[name] {
			continue
		}
		status := container.StatusStopped
		if c.running {
			status = container.StatusRunning
		}
		created := c.created
		entries = append(entries, container.Entry{
			Name:        name,
			Status:      status,
			Port:        c.spec.HostPort,
			BindAddress: c.spec.BindAddress,
			CreatedAt:   &created,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (f *fakeRuntime) Create(_ context.Context, spec container.RunSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.createErr != nil {
		return "", f.createErr
	}
	if _, ok := f.containers[spec.Name]; ok || f.foreign[spec.Name] {
		return "", &execx.Error{Kind: execx.KindExit, Command: "docker", Stderr: "Conflict. The container name is already in use."}
	}
	f.containers[spec.Name] = &fakeContainer{spec: spec, running: true, created: time.Now()}
	return "id-" + spec.Name, nil
}

func (f *fakeRuntime) Start(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start")
	f.containers[name].running = true
	return nil
}

func (f *fakeRuntime) Stop(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop")
	f.containers[name].running = false
	return nil
}

func (f *fakeRuntime) Remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove")
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.containers, name)
	return nil
}

func (f *fakeRuntime) State(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stateErr != nil {
		return "", f.stateErr
	}
	if f.containers[name].running {
		return "running", nil
	}
	return "exited", nil
}

func (f *fakeRuntime) Logs(_ context.Context, name string, tail int) (string, error) {
	return "logs for " + name, nil
}

func (f *fakeRuntime) ListDir(_ context.Context, name, path string) ([]container.FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ls " + path)
	return f.files[path], nil
}

type staticInterfaces []netif.Interface

func (s staticInterfaces) Interfaces(context.Context) []netif.Interface { return s }

type fakeProber struct {
	addr, user, password string
	err                  error
}

func (p *fakeProber) Probe(_ context.Context, addr, user, password string) (sftpcheck.Result, error) {
	p.addr, p.user, p.password = addr, user, password
	if p.err != nil {
		return sftpcheck.Result{}, p.err
	}
	return sftpcheck.Result{Address: addr, WorkDir: "/"}, nil
}

var errBoom = errors.New("boom")
