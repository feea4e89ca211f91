package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/server"
	"github.com/majorcontext/sftpman/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show a server's runtime state",
	Long: `Print the runtime's state for a server, such as running or exited.

Prints "not sftp" for names that are not managed servers and "not created"
when the runtime cannot inspect the container.`,
	Args: cobra.ExactArgs(1),
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	state := manager.Status(context.Background(), args[0])
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"name":   args[0],
			"state":  state,
			"status": server.StatusOf(state),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Status(state))
	return nil
}
