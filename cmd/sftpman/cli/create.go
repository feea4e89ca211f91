package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/server"
	"github.com/majorcontext/sftpman/internal/ui"
)

var createFlags struct {
	port          uint16
	hostPath      string
	containerPath string
	user          string
	password      string
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create and start an SFTP server",
	Long: `Create an SFTP server sharing a host directory.

The server is published on the address chosen by the network preference
(see 'sftpman net info'). The host directory is mounted at --container-path,
which defaults to /home/<user>/upload so the chrooted user can write to it.

If --password is omitted it is read from the terminal without echo.`,
	Example: `  sftpman create web --port 2222 --host-path ./share --user alice`,
	Args:    cobra.ExactArgs(1),
	RunE:    createServer,
}

func init() {
	f := createCmd.Flags()
	f.Uint16VarP(&createFlags.port, "port", "p", 2222, "host port to publish")
	f.StringVar(&createFlags.hostPath, "host-path", "", "host directory to share (required)")
	f.StringVar(&createFlags.containerPath, "container-path", "", "mount point inside the container (default /home/<user>/upload)")
	f.StringVarP(&createFlags.user, "user", "u", "sftp", "SFTP username")
	f.StringVar(&createFlags.password, "password", "", "SFTP password (prompted if omitted)")
	_ = createCmd.MarkFlagRequired("host-path")
	rootCmd.AddCommand(createCmd)
}

func createServer(cmd *cobra.Command, args []string) error {
	hostPath, err := filepath.Abs(createFlags.hostPath)
	if err != nil {
		return fmt.Errorf("resolving host path: %w", err)
	}
	containerPath := createFlags.containerPath
	if containerPath == "" {
		containerPath = "/home/" + createFlags.user + "/upload"
	}
	password := createFlags.password
	if password == "" {
		password, err = ui.PromptSecret("Password")
		if err != nil {
			return err
		}
	}

	manager, err := newManager()
	if err != nil {
		return err
	}

	ctx := context.Background()
	srv, err := manager.Create(ctx, server.Spec{
		Name:          args[0],
		Port:          createFlags.port,
		HostPath:      hostPath,
		ContainerPath: containerPath,
		Username:      createFlags.user,
		Password:      password,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		srv.Password = maskPassword(srv.Password, false)
		return writeJSON(out, srv)
	}

	addr := manager.LocalAddress(ctx)
	fmt.Fprintf(out, "%s Server %s created\n", ui.OKTag(), ui.Bold(srv.Name))
	fmt.Fprintf(out, "  connect: sftp -P %d %s@%s\n", srv.Port, srv.Username, addr)
	fmt.Fprintf(out, "  shares:  %s -> %s\n", srv.HostPath, srv.ContainerPath)
	return nil
}
