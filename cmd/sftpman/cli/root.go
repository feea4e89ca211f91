// Package cli implements the sftpman command-line interface using Cobra.
// Every command maps onto one server.Manager operation.
package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/config"
	"github.com/majorcontext/sftpman/internal/log"
	"github.com/majorcontext/sftpman/internal/ui"
)

var (
	verbose bool
	jsonOut bool

	// globalCfg is loaded before every command runs.
	globalCfg = config.DefaultGlobalConfig()
)

var rootCmd = &cobra.Command{
	Use:   "sftpman",
	Short: "Manage throwaway SFTP servers in containers",
	Long: `sftpman runs SFTP servers as containers of the atmoz/sftp image.

Each server shares one host directory over SFTP on a port of your choice.
Credentials are kept locally so they can be shown again later, and only
containers created from the managed image can be started, stopped or removed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		globalCfg = cfg

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      filepath.Join(config.GlobalConfigDir(), "debug"),
			RetentionDays: cfg.Debug.RetentionDays,
		}); err != nil {
			// Debug logging is optional; keep going with stderr only.
			ui.Warnf("failed to initialize debug logging: %v", err)
		}

		if jsonOut {
			ui.SetColorEnabled(false)
		}
		return nil
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	defer log.Close()
	err := rootCmd.Execute()
	if err != nil {
		ui.Errorf("%s", strings.TrimSpace(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}
