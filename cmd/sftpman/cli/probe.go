package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/ui"
)

var probeCmd = &cobra.Command{
	Use:   "probe <name>",
	Short: "Log in to a server over SFTP with its stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  probeServer,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func probeServer(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	res, err := manager.Probe(context.Background(), args[0])
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s accepted SFTP login at %s (%d entries in %s, %s)\n",
		ui.OKTag(), args[0], res.Address, res.Entries, res.WorkDir, res.Elapsed.Round(time.Millisecond))
	return nil
}
