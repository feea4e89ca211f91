package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/ui"
)

var showPasswords bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed SFTP servers",
	Long: `Show every container of the managed image with its stored credentials.

Servers created outside sftpman are listed with empty credential columns.
Passwords are masked unless --show-passwords is given.`,
	Args: cobra.NoArgs,
	RunE: listServers,
}

func init() {
	listCmd.Flags().BoolVar(&showPasswords, "show-passwords", false, "show stored passwords")
	rootCmd.AddCommand(listCmd)
}

func listServers(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	servers, err := manager.List(context.Background())
	if err != nil {
		return err
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })

	for i := range servers {
		servers[i].Password = maskPassword(servers[i].Password, showPasswords)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, servers)
	}

	if len(servers) == 0 {
		fmt.Fprintln(out, "No servers found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tPORT\tUSER\tPASSWORD\tHOST PATH\tCONTAINER PATH\tCREATED")
	for _, s := range servers {
		port := "-"
		if s.Port != 0 {
			port = fmt.Sprint(s.Port)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			ui.Status(s.Status),
			port,
			dash(s.Username),
			dash(s.Password),
			dash(s.HostPath),
			dash(s.ContainerPath),
			formatAge(s.CreatedAt),
		)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
