// Package netif discovers the host's IPv4 interfaces and chooses the address
// a new server publishes its port on.
package netif

import "strings"

// Well-known bindings.
const (
	// AllName is the name of the synthetic "every interface" entry.
	AllName = "all"
	// AnyAddress binds on every interface.
	AnyAddress = "0.0.0.0"
	// LoopbackAddress is the last-resort binding.
	LoopbackAddress = "127.0.0.1"
)

// Interface is one usable local IPv4 address.
type Interface struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	IsVPN   bool   `json:"is_vpn"`
}

// all is always the first enumerated entry.
var all = Interface{Name: AllName, Address: AnyAddress}

// vpnMarkers are substrings of interface names created by tunnel and VPN
// software.
var vpnMarkers = []string{
	"tun",
	"tap",
	"wg",
	"wireguard",
	"tailscale",
	"zerotier",
	"zt",
	"vpn",
	"hamachi",
	"radmin",
	"ppp",
	"ipsec",
	"nordlynx",
	"proton",
	"mullvad",
}

// IsVPNName reports whether an interface name looks like a tunnel or VPN
// adapter. Matching is a case-insensitive substring test.
func IsVPNName(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range vpnMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Discovered returns ifaces without the synthetic all-interfaces entry.
func Discovered(ifaces []Interface) []Interface {
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface == all {
			continue
		}
		out = append(out, iface)
	}
	return out
}
