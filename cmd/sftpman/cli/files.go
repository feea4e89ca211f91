package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/ui"
)

var filesCmd = &cobra.Command{
	Use:   "ls <name> [path]",
	Short: "List files inside a server",
	Long: `List a directory inside a server's container.

Without a path, lists the shared directory the server was created with.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: listFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

func listFiles(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	path := ""
	if len(args) == 2 {
		path = args[1]
	}

	files, err := manager.ListFiles(context.Background(), args[0], path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, files)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "Empty directory")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tPATH")
	for _, f := range files {
		name, size := f.Name, formatSize(f.Size)
		if f.IsDir {
			name, size = ui.Bold(f.Name+"/"), "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, size, f.Path)
	}
	return w.Flush()
}
