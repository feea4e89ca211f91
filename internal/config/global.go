package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory holding all sftpman state.
const DirName = "sftp-manager"

// Password backends.
const (
	PasswordBackendFile    = "file"
	PasswordBackendKeyring = "keyring"
)

// GlobalConfig holds settings from <config dir>/config.yaml.
type GlobalConfig struct {
	// Image is the managed SFTP server image. Containers running any other
	// image are never touched.
	Image string `yaml:"image"`
	// Runtime is "auto", "docker" or "podman".
	Runtime string `yaml:"runtime"`
	// UID is the uid given to the SFTP user inside the container.
	UID           int    `yaml:"uid"`
	RestartPolicy string `yaml:"restart_policy"`

	CommandTimeout time.Duration `yaml:"command_timeout"`
	// CreateTimeout covers "run", which may pull the image first.
	CreateTimeout time.Duration `yaml:"create_timeout"`

	// PruneOrphans drops stored credentials whose container is gone.
	PruneOrphans    bool   `yaml:"prune_orphans"`
	PasswordBackend string `yaml:"password_backend"`

	Debug DebugConfig `yaml:"debug"`
}

// DebugConfig controls the debug log files.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// DefaultGlobalConfig returns the default configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Image:           "atmoz/sftp",
		Runtime:         "auto",
		UID:             1001,
		RestartPolicy:   "unless-stopped",
		CommandTimeout:  30 * time.Second,
		CreateTimeout:   2 * time.Minute,
		PruneOrphans:    true,
		PasswordBackend: PasswordBackendFile,
		Debug: DebugConfig{
			RetentionDays: 14,
		},
	}
}

// LoadGlobal reads config.yaml from GlobalConfigDir and applies SFTPMAN_*
// environment overrides. A missing file yields the defaults; a file that does
// not parse is an error so typos are not silently ignored.
func LoadGlobal() (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	path := filepath.Join(GlobalConfigDir(), "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultGlobalConfig(), fmt.Errorf("parsing %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *GlobalConfig) {
	setString(&cfg.Image, "SFTPMAN_IMAGE")
	setString(&cfg.Runtime, "SFTPMAN_RUNTIME")
	setInt(&cfg.UID, "SFTPMAN_UID")
	setString(&cfg.RestartPolicy, "SFTPMAN_RESTART_POLICY")
	setDuration(&cfg.CommandTimeout, "SFTPMAN_COMMAND_TIMEOUT")
	setDuration(&cfg.CreateTimeout, "SFTPMAN_CREATE_TIMEOUT")
	setBool(&cfg.PruneOrphans, "SFTPMAN_PRUNE_ORPHANS")
	setString(&cfg.PasswordBackend, "SFTPMAN_PASSWORD_BACKEND")
	setInt(&cfg.Debug.RetentionDays, "SFTPMAN_DEBUG_RETENTION_DAYS")
}

// Validate reports the first invalid setting.
func (c *GlobalConfig) Validate() error {
	if strings.TrimSpace(c.Image) == "" {
		return errors.New("image is required")
	}
	switch c.Runtime {
	case "auto", "docker", "podman":
	default:
		return fmt.Errorf("invalid runtime %q: expected auto, docker or podman", c.Runtime)
	}
	if c.UID < 0 {
		return fmt.Errorf("invalid uid %d", c.UID)
	}
	if c.CommandTimeout <= 0 || c.CreateTimeout <= 0 {
		return errors.New("timeouts must be > 0")
	}
	switch c.PasswordBackend {
	case PasswordBackendFile, PasswordBackendKeyring:
	default:
		return fmt.Errorf("invalid password_backend %q: expected file or keyring", c.PasswordBackend)
	}
	return nil
}

// GlobalConfigDir returns the directory holding config.yaml, the credential
// and network documents, and debug logs. SFTPMAN_CONFIG_DIR overrides it.
func GlobalConfigDir() string {
	if dir := os.Getenv("SFTPMAN_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+DirName)
	}
	return filepath.Join(base, DirName)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dst = p
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if p, err := strconv.ParseBool(v); err == nil {
			*dst = p
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if p, err := time.ParseDuration(v); err == nil {
			*dst = p
		}
	}
}
