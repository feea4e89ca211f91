package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logsTail int

var logsCmd = &cobra.Command{
	Use:   "logs <name>",
	Short: "Show a server's recent output",
	Args:  cobra.ExactArgs(1),
	RunE:  showLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 100, "number of lines to show (0 for all)")
	rootCmd.AddCommand(logsCmd)
}

func showLogs(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	logs, err := manager.Logs(context.Background(), args[0], logsTail)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"name": args[0], "logs": logs})
	}
	fmt.Fprint(cmd.OutOrStdout(), logs)
	return nil
}
