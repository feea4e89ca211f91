package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the container runtime is available",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	info, verr := manager.RuntimeAvailable(context.Background())
	out := cmd.OutOrStdout()
	if jsonOut {
		if err := writeJSON(out, info); err != nil {
			return err
		}
		if verr != nil {
			return fmt.Errorf("%s is not available", info.Runtime)
		}
		return nil
	}

	if verr != nil {
		fmt.Fprintf(out, "%s %s is not available\n", ui.FailTag(), info.Runtime)
		return verr
	}
	fmt.Fprintf(out, "%s %s\n", ui.OKTag(), info.Version)
	return nil
}
