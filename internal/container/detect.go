package container

import (
	"fmt"
	"os/exec"

	"github.com/majorcontext/sftpman/internal/log"
)

// Runtime names accepted by ResolveBinary.
const (
	RuntimeAuto   = "auto"
	RuntimeDocker = "docker"
	RuntimePodman = "podman"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ResolveBinary maps a configured runtime to the CLI executable to drive.
// "auto" picks the first of docker and podman found on PATH. When neither is
// installed it still returns docker so the availability check fails with the
// runtime's own spawn error.
func ResolveBinary(runtime string) (string, error) {
	switch runtime {
	case RuntimeDocker, RuntimePodman:
		return runtime, nil
	case RuntimeAuto, "":
	default:
		return "", fmt.Errorf("unknown container runtime %q", runtime)
	}

	for _, candidate := range []string{RuntimeDocker, RuntimePodman} {
		if _, err := lookPath(candidate); err == nil {
			log.Debug("detected container runtime", "runtime", candidate)
			return candidate, nil
		}
	}
	log.Debug("no container runtime on PATH, defaulting to docker")
	return RuntimeDocker, nil
}
