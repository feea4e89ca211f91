package netif

// Binding is the address a server is published on and where it came from.
type Binding struct {
	Address string `json:"address"`
	// Interface is empty for the loopback fallback.
	Interface string `json:"interface,omitempty"`
	IsVPN     bool   `json:"is_vpn"`
}

func bindingOf(iface Interface) Binding {
	return Binding{Address: iface.Address, Interface: iface.Name, IsVPN: iface.IsVPN}
}

// Resolve picks one binding from ifaces. The first rule that matches wins:
//
//  1. an interface whose address equals preferredIP
//  2. an interface whose name equals preferredInterface
//  3. the first non-VPN interface
//  4. the first interface
//  5. loopback with no interface
//
// Resolve never fails.
func Resolve(ifaces []Interface, preferredIP, preferredInterface string) Binding {
	if preferredIP != "" {
		for _, iface := range ifaces {
			if iface.Address == preferredIP {
				return bindingOf(iface)
			}
		}
	}
	if preferredInterface != "" {
		for _, iface := range ifaces {
			if iface.Name == preferredInterface {
				return bindingOf(iface)
			}
		}
	}
	for _, iface := range ifaces {
		if !iface.IsVPN {
			return bindingOf(iface)
		}
	}
	if len(ifaces) > 0 {
		return bindingOf(ifaces[0])
	}
	return Binding{Address: LoopbackAddress}
}

// Honors reports whether b was picked by one of the preference rules rather
// than a fallback. No preference is always honored.
func Honors(b Binding, preferredIP, preferredInterface string) bool {
	if preferredIP == "" && preferredInterface == "" {
		return true
	}
	if preferredIP != "" && b.Interface != "" && b.Address == preferredIP {
		return true
	}
	return preferredInterface != "" && b.Interface == preferredInterface
}

// ReachableAddress is the address clients should dial for b. A binding on
// every interface is reported as the best discovered address instead.
func ReachableAddress(ifaces []Interface, b Binding) string {
	if b.Address != AnyAddress {
		return b.Address
	}
	return Resolve(Discovered(ifaces), "", "").Address
}
