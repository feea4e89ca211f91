package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunArgs(t *testing.T) {
	spec := RunSpec{
		Name:          "web",
		BindAddress:   "192.168.1.10",
		HostPort:      2222,
		HostPath:      "C:/Users/alice/share",
		ContainerPath: "/home/alice/upload",
		Username:      "alice",
		Password:      "s3cret",
		UID:           1001,
		RestartPolicy: "unless-stopped",
	}

	args, err := BuildRunArgs("atmoz/sftp", spec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"run", "-d",
		"--name", "web",
		"-p", "192.168.1.10:2222:22",
		"-v", "C:/Users/alice/share:/home/alice/upload",
		"--restart", "unless-stopped",
		"atmoz/sftp",
		"alice:s3cret:1001",
	}, args)
}

func TestBuildRunArgsNoRestartPolicy(t *testing.T) {
	args, err := BuildRunArgs("atmoz/sftp", RunSpec{
		Name: "web", BindAddress: "0.0.0.0", HostPort: 22, HostPath: "/srv", ContainerPath: "/home/u/data",
		Username: "u", Password: "p", UID: 1001,
	})
	require.NoError(t, err)
	assert.NotContains(t, args, "--restart")
}

func TestBuildRunArgsInvalidMapping(t *testing.T) {
	_, err := BuildRunArgs("atmoz/sftp", RunSpec{Name: "web", BindAddress: "not an ip", HostPort: 2222})
	assert.Error(t, err)
}
