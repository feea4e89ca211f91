package cli

import (
	"context"
	"fmt"
	"net/netip"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/majorcontext/sftpman/internal/netif"
	"github.com/majorcontext/sftpman/internal/ui"
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Inspect interfaces and choose the bind address",
	Long: `New servers are published on one local address. Without a preference
sftpman binds on every interface; a preferred address or interface name
overrides that while it exists.`,
}

var netListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local IPv4 interfaces",
	Args:  cobra.NoArgs,
	RunE:  listInterfaces,
}

var netInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the binding new servers will use",
	Args:  cobra.NoArgs,
	RunE:  showNetworkInfo,
}

var netPreferCmd = &cobra.Command{
	Use:   "prefer <address|interface>",
	Short: "Prefer an address or interface for new servers",
	Long: `Store a network preference. An IPv4 address is stored as a preferred
address and anything else as an interface name; setting one clears the other.`,
	Args: cobra.ExactArgs(1),
	RunE: setPreference,
}

var netClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the network preference",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager()
		if err != nil {
			return err
		}
		if err := manager.ClearNetworkPreference(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Network preference cleared")
		return nil
	},
}

func init() {
	netCmd.AddCommand(netListCmd, netInfoCmd, netPreferCmd, netClearCmd)
	rootCmd.AddCommand(netCmd)
}

func listInterfaces(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	ctx := context.Background()
	ifaces := manager.Interfaces(ctx)
	selected := manager.NetworkInfo(ctx)

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, ifaces)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tADDRESS\tKIND")
	for _, iface := range ifaces {
		mark := ""
		if iface.Address == selected.Address && iface.Name == selected.Interface {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, iface.Name, iface.Address, ui.VPNTag(iface.IsVPN))
	}
	return w.Flush()
}

func showNetworkInfo(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	ctx := context.Background()
	binding := manager.NetworkInfo(ctx)
	pref := manager.NetworkPreference()

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, map[string]any{
			"binding":    binding,
			"preference": pref,
			"connect":    manager.LocalAddress(ctx),
		})
	}

	iface := binding.Interface
	if iface == "" {
		iface = "-"
	}
	fmt.Fprintf(out, "Address:    %s\n", binding.Address)
	fmt.Fprintf(out, "Interface:  %s (%s)\n", iface, ui.VPNTag(binding.IsVPN))
	fmt.Fprintf(out, "Connect to: %s\n", manager.LocalAddress(ctx))
	switch {
	case pref.PreferredIP != "":
		fmt.Fprintf(out, "Preference: address %s\n", pref.PreferredIP)
	case pref.PreferredInterface != "":
		fmt.Fprintf(out, "Preference: interface %s\n", pref.PreferredInterface)
	default:
		fmt.Fprintln(out, "Preference: none")
	}
	if binding.IsVPN {
		ui.Warnf("new servers will only be reachable through the %s tunnel", binding.Interface)
	}
	return nil
}

func setPreference(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	ip, iface := "", args[0]
	if _, err := netip.ParseAddr(args[0]); err == nil {
		ip, iface = args[0], ""
	}
	if err := manager.SetNetworkPreference(ip, iface); err != nil {
		return err
	}

	binding := manager.NetworkInfo(context.Background())
	if !netif.Honors(binding, ip, iface) {
		ui.Warnf("%s is not a current interface; falling back to %s", args[0], binding.Address)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "New servers will bind to %s\n", binding.Address)
	return nil
}
