package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ipCmd = &cobra.Command{
	Use:   "ip",
	Short: "Print the address clients should connect to",
	Args:  cobra.NoArgs,
	RunE:  runIP,
}

func init() {
	rootCmd.AddCommand(ipCmd)
}

func runIP(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	addr := manager.LocalAddress(context.Background())
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"address": addr})
	}
	fmt.Fprintln(cmd.OutOrStdout(), addr)
	return nil
}
