package store

import (
	"errors"
	"fmt"
	"net/netip"
	"path/filepath"
)

// PreferenceFile is the network preference document's file name.
const PreferenceFile = "network.json"

// ErrConflictingPreference is returned when both an address and an interface
// are given; only one preference can be active.
var ErrConflictingPreference = errors.New("set either a preferred address or a preferred interface, not both")

// NetworkPreference is the user's chosen binding. At most one field is set.
type NetworkPreference struct {
	PreferredInterface string `json:"preferred_interface,omitempty"`
	PreferredIP        string `json:"preferred_ip,omitempty"`
}

// IsZero reports whether no preference is set.
func (p NetworkPreference) IsZero() bool {
	return p.PreferredInterface == "" && p.PreferredIP == ""
}

// PreferenceStore owns the network preference document.
type PreferenceStore struct {
	file jsonFile
}

// NewPreferenceStore returns a store for dir/network.json.
func NewPreferenceStore(dir string) *PreferenceStore {
	return &PreferenceStore{file: jsonFile{path: filepath.Join(dir, PreferenceFile)}}
}

// Path returns the document location.
func (s *PreferenceStore) Path() string {
	return s.file.path
}

// Load returns the stored preference, zero if none.
func (s *PreferenceStore) Load() NetworkPreference {
	var p NetworkPreference
	s.file.read(&p)
	return p
}

// Set stores a preference. An address clears any interface name and an
// interface name clears any address; giving neither clears both.
func (s *PreferenceStore) Set(ip, iface string) error {
	switch {
	case ip != "" && iface != "":
		return ErrConflictingPreference
	case ip != "":
		return s.SetIP(ip)
	case iface != "":
		return s.SetInterface(iface)
	default:
		return s.Clear()
	}
}

// SetIP prefers the given IPv4 address.
func (s *PreferenceStore) SetIP(ip string) error {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return fmt.Errorf("invalid IPv4 address %q", ip)
	}
	return s.write(NetworkPreference{PreferredIP: addr.String()})
}

// SetInterface prefers the named interface.
func (s *PreferenceStore) SetInterface(name string) error {
	return s.write(NetworkPreference{PreferredInterface: name})
}

// Clear removes any preference.
func (s *PreferenceStore) Clear() error {
	return s.write(NetworkPreference{})
}

func (s *PreferenceStore) write(next NetworkPreference) error {
	var p NetworkPreference
	return s.file.update(&p, func() error {
		p = next
		return nil
	})
}
