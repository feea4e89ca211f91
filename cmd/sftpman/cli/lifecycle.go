package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/server"
	"github.com/majorcontext/sftpman/internal/ui"
)

var removeYes bool

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a stopped server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lifecycle(cmd, args[0], "started", (*server.Manager).Start)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a running server",
	Long:  `Stop a running server. Stopping a server that is already stopped succeeds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lifecycle(cmd, args[0], "stopped", (*server.Manager).Stop)
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Remove a server and its stored credentials",
	Long: `Force-remove a server's container, then forget its credentials.

The shared host directory is left untouched. If the runtime fails to remove
the container, the stored credentials are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !removeYes && ui.StdinIsTerminal() {
			ok, err := ui.Confirm(fmt.Sprintf("Remove server %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
		}
		return lifecycle(cmd, args[0], "removed", (*server.Manager).Remove)
	},
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(startCmd, stopCmd, removeCmd)
}

func lifecycle(cmd *cobra.Command, name, done string, op func(*server.Manager, context.Context, string) error) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	if err := op(manager, context.Background(), name); err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"name": name, "result": done})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Server %s %s\n", name, done)
	return nil
}
