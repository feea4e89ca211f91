package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/majorcontext/sftpman/internal/config"
	"github.com/majorcontext/sftpman/internal/container"
	"github.com/majorcontext/sftpman/internal/execx"
	"github.com/majorcontext/sftpman/internal/netif"
	"github.com/majorcontext/sftpman/internal/server"
	"github.com/majorcontext/sftpman/internal/sftpcheck"
	"github.com/majorcontext/sftpman/internal/store"
)

// newRunner returns the runner for every external command. Tests replace it.
var newRunner = func() execx.Runner { return execx.Exec{} }

// newManager wires a Manager from the loaded global config.
func newManager() (*server.Manager, error) {
	cfg := globalCfg

	bin, err := container.ResolveBinary(cfg.Runtime)
	if err != nil {
		return nil, err
	}
	runner := newRunner()
	gw := container.NewGateway(container.Options{
		Binary:        bin,
		Image:         cfg.Image,
		Runner:        runner,
		Timeout:       cfg.CommandTimeout,
		CreateTimeout: cfg.CreateTimeout,
	})

	var secrets store.SecretBackend
	if cfg.PasswordBackend == config.PasswordBackendKeyring {
		secrets = store.NewKeyringBackend()
	}
	dir := config.GlobalConfigDir()

	return server.NewManager(server.Options{
		Runtime:       gw,
		Interfaces:    netif.NewEnumerator(runner, cfg.CommandTimeout),
		Credentials:   store.NewCredentialStore(dir, secrets),
		Preferences:   store.NewPreferenceStore(dir),
		Prober:        sftpcheck.Prober{Timeout: cfg.CommandTimeout},
		UID:           cfg.UID,
		RestartPolicy: cfg.RestartPolicy,
		PruneOrphans:  cfg.PruneOrphans,
	}), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAge(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	d := time.Since(*t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func maskPassword(p string, show bool) string {
	if show || p == "" {
		return p
	}
	return "********"
}
