package server

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/containerd/errdefs"

	"github.com/majorcontext/sftpman/internal/container"
	"github.com/majorcontext/sftpman/internal/log"
	"github.com/majorcontext/sftpman/internal/netif"
	"github.com/majorcontext/sftpman/internal/sftpcheck"
	"github.com/majorcontext/sftpman/internal/store"
)

// Runtime is the container runtime as the Manager uses it.
// *container.Gateway implements it.
type Runtime interface {
	Binary() string
	Version(ctx context.Context) (string, error)
	IsManaged(ctx context.Context, name string) bool
	List(ctx context.Context) ([]container.Entry, error)
	Create(ctx context.Context, spec container.RunSpec) (string, error)
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	State(ctx context.Context, name string) (string, error)
	Logs(ctx context.Context, name string, tail int) (string, error)
	ListDir(ctx context.Context, name, path string) ([]container.FileEntry, error)
}

// InterfaceSource enumerates local interfaces. *netif.Enumerator implements it.
type InterfaceSource interface {
	Interfaces(ctx context.Context) []netif.Interface
}

// Prober checks that a server accepts SFTP logins. sftpcheck.Prober
// implements it.
type Prober interface {
	Probe(ctx context.Context, addr, user, password string) (sftpcheck.Result, error)
}

// Options wires a Manager.
type Options struct {
	Runtime     Runtime
	Interfaces  InterfaceSource
	Credentials *store.CredentialStore
	Preferences *store.PreferenceStore
	Prober      Prober
	// UID is the uid the image assigns to the SFTP user.
	UID           int
	RestartPolicy string
	// PruneOrphans drops stored credentials whose container no longer
	// exists whenever List succeeds.
	PruneOrphans bool
}

// Manager runs lifecycle operations. It keeps no state of its own.
type Manager struct {
	runtime       Runtime
	ifaces        InterfaceSource
	creds         *store.CredentialStore
	prefs         *store.PreferenceStore
	prober        Prober
	uid           int
	restartPolicy string
	prune         bool
}

// NewManager returns a Manager for opts.
func NewManager(opts Options) *Manager {
	m := &Manager{
		runtime:       opts.Runtime,
		ifaces:        opts.Interfaces,
		creds:         opts.Credentials,
		prefs:         opts.Preferences,
		prober:        opts.Prober,
		uid:           opts.UID,
		restartPolicy: opts.RestartPolicy,
		prune:         opts.PruneOrphans,
	}
	if m.prober == nil {
		m.prober = sftpcheck.Prober{}
	}
	return m
}

// gate is the ownership check every operation on an existing name passes.
func (m *Manager) gate(ctx context.Context, name string) error {
	if !m.runtime.IsManaged(ctx, name) {
		log.Debug("ownership check failed", "name", name)
		return ErrNotManaged
	}
	return nil
}

// RuntimeInfo describes the container runtime CLI.
type RuntimeInfo struct {
	Runtime   string `json:"runtime"`
	Available bool   `json:"available"`
	Version   string `json:"version"`
}

// RuntimeAvailable reports whether the container runtime CLI works. The
// error is the runtime's own failure when it does not.
func (m *Manager) RuntimeAvailable(ctx context.Context) (RuntimeInfo, error) {
	info := RuntimeInfo{Runtime: m.runtime.Binary()}
	version, err := m.runtime.Version(ctx)
	if err != nil {
		log.Debug("runtime unavailable", "runtime", info.Runtime, "error", err)
		return info, err
	}
	info.Available = true
	info.Version = version
	return info, nil
}

// Create runs a new server bound to the resolved network address and stores
// its credentials. Nothing is stored when the runtime fails.
func (m *Manager) Create(ctx context.Context, spec Spec) (Server, error) {
	if err := spec.Validate(); err != nil {
		return Server{}, err
	}

	binding := m.NetworkInfo(ctx)

	// Only the volume mapping sees the normalized path; the stored and
	// returned host path is the one the caller gave.
	_, err := m.runtime.Create(ctx, container.RunSpec{
		Name:          spec.Name,
		BindAddress:   binding.Address,
		HostPort:      spec.Port,
		HostPath:      normalizeHostPath(spec.HostPath),
		ContainerPath: spec.ContainerPath,
		Username:      spec.Username,
		Password:      spec.Password,
		UID:           m.uid,
		RestartPolicy: m.restartPolicy,
	})
	if err != nil {
		log.Warn("creating server failed", "name", spec.Name, "error", err)
		return Server{}, err
	}

	creds := store.Credentials{
		Username:      spec.Username,
		Password:      spec.Password,
		HostPath:      spec.HostPath,
		ContainerPath: spec.ContainerPath,
	}
	if err := m.creds.Put(spec.Name, creds); err != nil {
		// The container exists; report the server and leave the credential
		// gap to be noticed on the next list.
		log.Error("saving server credentials", "name", spec.Name, "path", m.creds.Path(), "error", err)
	}

	log.Info("server created",
		"name", spec.Name,
		"address", binding.Address,
		"interface", binding.Interface,
		"port", spec.Port)

	return Server{
		Name:          spec.Name,
		Port:          spec.Port,
		HostPath:      spec.HostPath,
		ContainerPath: spec.ContainerPath,
		Username:      spec.Username,
		Password:      spec.Password,
		Status:        StatusRunning,
	}, nil
}

// Start starts a stopped server.
func (m *Manager) Start(ctx context.Context, name string) error {
	if err := m.gate(ctx, name); err != nil {
		return err
	}
	if err := m.runtime.Start(ctx, name); err != nil {
		return err
	}
	log.Info("server started", "name", name)
	return nil
}

// Stop stops a server. Stopping a stopped server succeeds.
func (m *Manager) Stop(ctx context.Context, name string) error {
	if err := m.gate(ctx, name); err != nil {
		return err
	}
	if err := m.runtime.Stop(ctx, name); err != nil {
		return err
	}
	log.Info("server stopped", "name", name)
	return nil
}

// Remove force-removes the container and then its credentials. When the
// runtime fails the credentials are kept, unless the failure says the
// container is already gone.
func (m *Manager) Remove(ctx context.Context, name string) error {
	if err := m.gate(ctx, name); err != nil {
		return err
	}
	if err := m.runtime.Remove(ctx, name); err != nil {
		if !errdefs.IsNotFound(err) {
			return err
		}
		log.Info("server already removed", "name", name)
	}
	if err := m.creds.Delete(name); err != nil {
		log.Error("deleting server credentials", "name", name, "path", m.creds.Path(), "error", err)
	}
	log.Info("server removed", "name", name)
	return nil
}

// Status returns the runtime's state for name verbatim, StateNotSFTP when
// the name is not ours and StateNotCreated when inspection fails.
func (m *Manager) Status(ctx context.Context, name string) string {
	if m.gate(ctx, name) != nil {
		return StateNotSFTP
	}
	state, err := m.runtime.State(ctx, name)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			log.Warn("inspecting server state", "name", name, "error", err)
		}
		return StateNotCreated
	}
	return state
}

// Logs returns the last tail lines of the server's output.
func (m *Manager) Logs(ctx context.Context, name string, tail int) (string, error) {
	if err := m.gate(ctx, name); err != nil {
		return "", err
	}
	return m.runtime.Logs(ctx, name, tail)
}

// ListFiles lists path inside the server. An empty path lists the stored
// container path, or "/" when there is none.
func (m *Manager) ListFiles(ctx context.Context, name, path string) ([]container.FileEntry, error) {
	if err := m.gate(ctx, name); err != nil {
		return nil, err
	}
	if path == "" {
		path = "/"
		if c, ok := m.creds.Get(name); ok && c.ContainerPath != "" {
			path = c.ContainerPath
		}
	}
	return m.runtime.ListDir(ctx, name, path)
}

// List joins the runtime's managed containers with stored credentials.
// Containers without credentials are listed with empty credential fields.
func (m *Manager) List(ctx context.Context) ([]Server, error) {
	entries, err := m.runtime.List(ctx)
	if err != nil {
		return nil, err
	}
	stored := m.creds.All()

	servers := make([]Server, 0, len(entries))
	live := make(map[string]bool, len(entries))
	for _, e := range entries {
		live[e.Name] = true
		c := stored[e.Name]
		servers = append(servers, Server{
			Name:          e.Name,
			Port:          e.Port,
			HostPath:      c.HostPath,
			ContainerPath: c.ContainerPath,
			Username:      c.Username,
			Password:      c.Password,
			Status:        e.Status,
			CreatedAt:     e.CreatedAt,
		})
	}

	if m.prune {
		m.pruneOrphans(live)
	}
	return servers, nil
}

func (m *Manager) pruneOrphans(live map[string]bool) {
	removed, err := m.creds.Prune(func(name string) bool { return live[name] })
	if err != nil {
		log.Warn("pruning orphaned credentials", "error", err)
		return
	}
	for _, name := range removed {
		log.Info("removed credentials for missing server", "name", name)
	}
}

// Interfaces returns the current local interfaces, the synthetic
// all-interfaces entry first.
func (m *Manager) Interfaces(ctx context.Context) []netif.Interface {
	return m.ifaces.Interfaces(ctx)
}

// NetworkInfo resolves the binding a new server would use now.
func (m *Manager) NetworkInfo(ctx context.Context) netif.Binding {
	pref := m.prefs.Load()
	return netif.Resolve(m.ifaces.Interfaces(ctx), pref.PreferredIP, pref.PreferredInterface)
}

// LocalAddress is the address clients should use to reach new servers.
func (m *Manager) LocalAddress(ctx context.Context) string {
	ifaces := m.ifaces.Interfaces(ctx)
	pref := m.prefs.Load()
	return netif.ReachableAddress(ifaces, netif.Resolve(ifaces, pref.PreferredIP, pref.PreferredInterface))
}

// NetworkPreference returns the stored preference.
func (m *Manager) NetworkPreference() store.NetworkPreference {
	return m.prefs.Load()
}

// SetNetworkPreference stores a preferred address or interface name.
// Setting one clears the other; setting neither clears both.
func (m *Manager) SetNetworkPreference(ip, iface string) error {
	return m.prefs.Set(ip, iface)
}

// ClearNetworkPreference removes any stored preference.
func (m *Manager) ClearNetworkPreference() error {
	return m.prefs.Clear()
}

// Probe logs in to a running server with its stored credentials.
func (m *Manager) Probe(ctx context.Context, name string) (sftpcheck.Result, error) {
	if err := m.gate(ctx, name); err != nil {
		return sftpcheck.Result{}, err
	}
	c, ok := m.creds.Get(name)
	if !ok {
		return sftpcheck.Result{}, fmt.Errorf("%s: %w", name, ErrNoCredentials)
	}

	entries, err := m.runtime.List(ctx)
	if err != nil {
		return sftpcheck.Result{}, err
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		if e.Status != container.StatusRunning || e.Port == 0 {
			return sftpcheck.Result{}, fmt.Errorf("server %s: %w", name, ErrNotRunning)
		}
		addr := net.JoinHostPort(dialAddress(e.BindAddress), strconv.Itoa(int(e.Port)))
		res, err := m.prober.Probe(ctx, addr, c.Username, c.Password)
		if err != nil {
			return sftpcheck.Result{}, err
		}
		log.Debug("probe succeeded", "name", name, "address", addr, "elapsed", res.Elapsed)
		return res, nil
	}
	return sftpcheck.Result{}, fmt.Errorf("server %s: %w", name, ErrNotRunning)
}

// dialAddress maps wildcard bind addresses to loopback.
func dialAddress(bind string) string {
	switch bind {
	case "", netif.AnyAddress, "::":
		return netif.LoopbackAddress
	}
	return bind
}
