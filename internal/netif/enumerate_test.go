package netif

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/majorcontext/sftpman/internal/execx/exectest"
)

const ipAddrOutput = `1: lo    inet 127.0.0.1/8 scope host lo\       valid_lft forever preferred_lft forever
2: eth0    inet 192.168.1.10/24 brd 192.168.1.255 scope global dynamic eth0\       valid_lft 86000sec preferred_lft 86000sec
3: veth9@if2    inet 172.17.0.1/16 scope global veth9\       valid_lft forever preferred_lft forever
5: wg0    inet 10.8.0.2/32 scope global wg0\       valid_lft forever preferred_lft forever
`

const darwinIfconfig = `lo0: flags=8049<UP,LOOPBACK,RUNNING,MULTICAST> mtu 16384
	inet 127.0.0.1 netmask 0xff000000
	inet6 ::1 prefixlen 128
en0: flags=8863<UP,BROADCAST,SMART,RUNNING,SIMPLEX,MULTICAST> mtu 1500
	ether 3c:22:fb:00:00:01
	inet6 fe80::1%en0 prefixlen 64 secured scopeid 0x4
	inet 192.168.1.20 netmask 0xffffff00 broadcast 192.168.1.255
utun4: flags=8051<UP,POINTOPOINT,RUNNING,MULTICAST> mtu 1280
	inet 100.101.102.103 --> 100.101.102.103 netmask 0xffffffff
bridge0: flags=8863<UP,BROADCAST,SMART,RUNNING,SIMPLEX,MULTICAST> mtu 1500
	options=63<RXCSUM,TXCSUM,TSO4,TSO6>
`

const netToolsIfconfig = `eth0      Link encap:Ethernet  HWaddr 00:11:22:33:44:55
          inet addr:10.1.2.3  Bcast:10.1.2.255  Mask:255.255.255.0
          UP BROADCAST RUNNING MULTICAST  MTU:1500  Metric:1

lo        Link encap:Local Loopback
          inet addr:127.0.0.1  Mask:255.0.0.0
`

const windowsOutput = "Ethernet|192.168.1.30\r\n" +
	"Loopback Pseudo-Interface 1|127.0.0.1\r\n" +
	"NordLynx|10.5.0.2\r\n" +
	"Wi-Fi|\r\n" +
	"garbage\r\n"

func newEnumerator(r *exectest.Runner, goos string) *Enumerator {
	e := NewEnumerator(r, 0)
	e.goos = goos
	return e
}

func TestEnumerator_Linux(t *testing.T) {
	r := exectest.New().On("ip -4 -o addr show", exectest.Response{Stdout: ipAddrOutput})
	got := newEnumerator(r, "linux").Interfaces(context.Background())

	assert.Equal(t, []Interface{
		{Name: AllName, Address: AnyAddress},
		{Name: "eth0", Address: "192.168.1.10"},
		{Name: "veth9", Address: "172.17.0.1"},
		{Name: "wg0", Address: "10.8.0.2", IsVPN: true},
	}, got)
}

func TestEnumerator_LinuxFallsBackToIfconfig(t *testing.T) {
	r := exectest.New().
		On("ip -4 -o addr show", exectest.Response{ExitStderr: "ip: command not found"}).
		On("ifconfig", exectest.Response{Stdout: netToolsIfconfig})
	got := newEnumerator(r, "linux").Interfaces(context.Background())

	assert.Equal(t, []Interface{
		{Name: AllName, Address: AnyAddress},
		{Name: "eth0", Address: "10.1.2.3"},
	}, got)
}

func TestEnumerator_Darwin(t *testing.T) {
	r := exectest.New().On("ifconfig", exectest.Response{Stdout: darwinIfconfig})
	got := newEnumerator(r, "darwin").Interfaces(context.Background())

	assert.Equal(t, []Interface{
		{Name: AllName, Address: AnyAddress},
		{Name: "en0", Address: "192.168.1.20"},
		{Name: "utun4", Address: "100.101.102.103", IsVPN: true},
	}, got)
}

func TestEnumerator_Windows(t *testing.T) {
	r := exectest.New().On("powershell -NoProfile -Command "+windowsScript, exectest.Response{Stdout: windowsOutput})
	got := newEnumerator(r, "windows").Interfaces(context.Background())

	assert.Equal(t, []Interface{
		{Name: AllName, Address: AnyAddress},
		{Name: "Ethernet", Address: "192.168.1.30"},
		{Name: "NordLynx", Address: "10.5.0.2", IsVPN: true},
	}, got)
}

func TestEnumerator_DegradesSilently(t *testing.T) {
	tests := []struct {
		name string
		goos string
		r    *exectest.Runner
	}{
		{"command missing", "darwin", exectest.New()},
		{"unparseable output", "darwin", exectest.New().On("ifconfig", exectest.Response{Stdout: "¯\\_(ツ)_/¯"})},
		{"linux both fail", "linux", exectest.New()},
		{"windows failure", "windows", exectest.New()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEnumerator(tt.r, tt.goos).Interfaces(context.Background())
			assert.Equal(t, []Interface{{Name: AllName, Address: AnyAddress}}, got)
		})
	}
}

func TestEnumerator_RecomputesEveryCall(t *testing.T) {
	r := exectest.New().
		On("ifconfig", exectest.Response{Stdout: "en0: flags=1\n\tinet 10.0.0.1 netmask 0xff\n"}).
		On("ifconfig", exectest.Response{Stdout: "en0: flags=1\n\tinet 10.0.0.2 netmask 0xff\n"})
	e := newEnumerator(r, "darwin")

	assert.Equal(t, "10.0.0.1", e.Interfaces(context.Background())[1].Address)
	assert.Equal(t, "10.0.0.2", e.Interfaces(context.Background())[1].Address)
	assert.Len(t, r.Calls(), 2)
}
