package netif

import (
	"bufio"
	"context"
	"net/netip"
	"runtime"
	"strings"
	"time"

	"github.com/majorcontext/sftpman/internal/execx"
	"github.com/majorcontext/sftpman/internal/log"
)

const windowsScript = `Get-NetIPAddress -AddressFamily IPv4 | ForEach-Object { "$($_.InterfaceAlias)|$($_.IPAddress)" }`

// Enumerator lists local interfaces using the platform's address utility.
// Nothing is cached; every call runs the command again.
type Enumerator struct {
	runner  execx.Runner
	goos    string
	timeout time.Duration
}

// NewEnumerator returns an Enumerator for the current platform. A nil runner
// uses execx.Exec.
func NewEnumerator(runner execx.Runner, timeout time.Duration) *Enumerator {
	if runner == nil {
		runner = execx.Exec{}
	}
	return &Enumerator{runner: runner, goos: runtime.GOOS, timeout: timeout}
}

type pair struct {
	name string
	addr string
}

// Interfaces returns the synthetic all-interfaces entry followed by every
// discovered non-loopback IPv4 address. Command failures and unreadable
// output degrade to the synthetic entry alone.
func (e *Enumerator) Interfaces(ctx context.Context) []Interface {
	ifaces := []Interface{all}
	for _, p := range e.discover(ctx) {
		if p.addr == "" || strings.HasPrefix(p.addr, "127.") {
			continue
		}
		ifaces = append(ifaces, Interface{Name: p.name, Address: p.addr, IsVPN: IsVPNName(p.name)})
	}
	return ifaces
}

func (e *Enumerator) discover(ctx context.Context) []pair {
	switch e.goos {
	case "windows":
		out, err := e.run(ctx, "powershell", "-NoProfile", "-Command", windowsScript)
		if err != nil {
			return nil
		}
		return parsePowerShell(out)
	case "linux":
		if out, err := e.run(ctx, "ip", "-4", "-o", "addr", "show"); err == nil {
			if pairs := parseIPAddr(out); len(pairs) > 0 {
				return pairs
			}
		}
		fallthrough
	default:
		out, err := e.run(ctx, "ifconfig")
		if err != nil {
			return nil
		}
		return parseIfconfig(out)
	}
}

func (e *Enumerator) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := execx.WithTimeout(ctx, e.timeout)
	defer cancel()
	out, err := e.runner.Run(ctx, name, args...)
	if err != nil {
		log.Debug("interface enumeration failed", "command", name, "error", err)
		return "", err
	}
	return string(out.Stdout), nil
}

// parseIPAddr reads `ip -4 -o addr show` lines such as
// "2: eth0    inet 192.168.1.10/24 brd 192.168.1.255 scope global eth0".
func parseIPAddr(out string) []pair {
	var pairs []pair
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[2] != "inet" {
			continue
		}
		name, _, _ := strings.Cut(fields[1], "@")
		addr, _, _ := strings.Cut(fields[3], "/")
		if !isIPv4(addr) {
			continue
		}
		pairs = append(pairs, pair{name: name, addr: addr})
	}
	return pairs
}

// parseIfconfig reads BSD and net-tools ifconfig output. A stanza starts on
// an unindented line with the interface name; "inet" lines inside it carry
// an address, optionally prefixed with "addr:".
func parseIfconfig(out string) []pair {
	var pairs []pair
	var current string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if line[0] != ' ' && line[0] != '\t' {
			current = strings.TrimSuffix(fields[0], ":")
			continue
		}
		if current == "" || len(fields) < 2 || fields[0] != "inet" {
			continue
		}
		addr := strings.TrimPrefix(fields[1], "addr:")
		if !isIPv4(addr) {
			continue
		}
		pairs = append(pairs, pair{name: current, addr: addr})
	}
	return pairs
}

// parsePowerShell reads "alias|address" lines.
func parsePowerShell(out string) []pair {
	var pairs []pair
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		name, addr, ok := strings.Cut(strings.TrimSpace(sc.Text()), "|")
		if !ok {
			continue
		}
		addr = strings.TrimSpace(addr)
		if !isIPv4(addr) {
			continue
		}
		pairs = append(pairs, pair{name: strings.TrimSpace(name), addr: addr})
	}
	return pairs
}

func isIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}
