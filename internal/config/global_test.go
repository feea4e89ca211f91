package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SFTPMAN_CONFIG_DIR", dir)

	writeConfig(t, dir, `
image: atmoz/sftp:alpine
runtime: podman
uid: 2000
command_timeout: 10s
prune_orphans: false
debug:
  retention_days: 7
`)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Image != "atmoz/sftp:alpine" {
		t.Errorf("Image = %q, want atmoz/sftp:alpine", cfg.Image)
	}
	if cfg.Runtime != "podman" {
		t.Errorf("Runtime = %q, want podman", cfg.Runtime)
	}
	if cfg.UID != 2000 {
		t.Errorf("UID = %d, want 2000", cfg.UID)
	}
	if cfg.CommandTimeout != 10*time.Second {
		t.Errorf("CommandTimeout = %v, want 10s", cfg.CommandTimeout)
	}
	if cfg.CreateTimeout != 2*time.Minute {
		t.Errorf("CreateTimeout = %v, want default 2m", cfg.CreateTimeout)
	}
	if cfg.PruneOrphans {
		t.Error("PruneOrphans = true, want false from file")
	}
	if cfg.Debug.RetentionDays != 7 {
		t.Errorf("Debug.RetentionDays = %d, want 7", cfg.Debug.RetentionDays)
	}
}

func TestLoadGlobalConfigDefaults(t *testing.T) {
	t.Setenv("SFTPMAN_CONFIG_DIR", t.TempDir())

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	want := DefaultGlobalConfig()
	if *cfg != *want {
		t.Errorf("LoadGlobal() = %+v, want defaults %+v", *cfg, *want)
	}
	if cfg.Image != "atmoz/sftp" || cfg.UID != 1001 || cfg.RestartPolicy != "unless-stopped" {
		t.Errorf("unexpected defaults: %+v", *cfg)
	}
}

func TestLoadGlobalConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SFTPMAN_CONFIG_DIR", dir)
	writeConfig(t, dir, "runtime: docker\n")

	t.Setenv("SFTPMAN_RUNTIME", "podman")
	t.Setenv("SFTPMAN_CREATE_TIMEOUT", "5m")
	t.Setenv("SFTPMAN_PASSWORD_BACKEND", "keyring")
	t.Setenv("SFTPMAN_UID", "not-a-number")

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Runtime != "podman" {
		t.Errorf("Runtime = %q, want podman from env", cfg.Runtime)
	}
	if cfg.CreateTimeout != 5*time.Minute {
		t.Errorf("CreateTimeout = %v, want 5m from env", cfg.CreateTimeout)
	}
	if cfg.PasswordBackend != PasswordBackendKeyring {
		t.Errorf("PasswordBackend = %q, want keyring", cfg.PasswordBackend)
	}
	if cfg.UID != 1001 {
		t.Errorf("UID = %d, want default kept for unparseable env", cfg.UID)
	}
}

func TestLoadGlobalConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "image: [unterminated\n"},
		{"bad runtime", "runtime: containerd\n"},
		{"bad backend", "password_backend: vault\n"},
		{"empty image", "image: \"  \"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("SFTPMAN_CONFIG_DIR", dir)
			writeConfig(t, dir, tt.content)

			if _, err := LoadGlobal(); err == nil {
				t.Error("LoadGlobal() succeeded, want error")
			}
		})
	}
}

func TestGlobalConfigDir(t *testing.T) {
	t.Setenv("SFTPMAN_CONFIG_DIR", "/tmp/sftpman-test")
	if got := GlobalConfigDir(); got != "/tmp/sftpman-test" {
		t.Errorf("GlobalConfigDir() = %q, want override", got)
	}

	t.Setenv("SFTPMAN_CONFIG_DIR", "")
	if got := GlobalConfigDir(); filepath.Base(got) != DirName && filepath.Base(got) != "."+DirName {
		t.Errorf("GlobalConfigDir() = %q, want it to end in %s", got, DirName)
	}
}
