package container

import (
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
)

// sftpPort is the port sshd listens on inside the managed image.
const sftpPort = "22"

// RunSpec is everything needed to create a managed container.
type RunSpec struct {
	Name          string
	BindAddress   string
	HostPort      uint16
	HostPath      string
	ContainerPath string
	Username      string
	Password      string
	UID           int
	RestartPolicy string
}

// PortMapping returns the publish spec "<bind>:<port>:22".
func (s RunSpec) PortMapping() string {
	return s.BindAddress + ":" + strconv.Itoa(int(s.HostPort)) + ":" + sftpPort
}

// VolumeMapping returns the bind mount spec "<host>:<container>".
func (s RunSpec) VolumeMapping() string {
	return s.HostPath + ":" + s.ContainerPath
}

// UserSpec returns the image's user provisioning argument
// "<user>:<password>:<uid>".
func (s RunSpec) UserSpec() string {
	return s.Username + ":" + s.Password + ":" + strconv.Itoa(s.UID)
}

// BuildRunArgs returns the runtime arguments that create s from image.
func BuildRunArgs(image string, s RunSpec) ([]string, error) {
	mappings, err := nat.ParsePortSpec(s.PortMapping())
	if err != nil {
		return nil, fmt.Errorf("invalid port mapping %q: %w", s.PortMapping(), err)
	}
	if len(mappings) != 1 {
		return nil, fmt.Errorf("invalid port mapping %q: expected a single port", s.PortMapping())
	}

	args := []string{"run", "-d", "--name", s.Name, "-p", s.PortMapping(), "-v", s.VolumeMapping()}
	if s.RestartPolicy != "" {
		args = append(args, "--restart", s.RestartPolicy)
	}
	return append(args, image, s.UserSpec()), nil
}
