package sysdns

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
)

// fakeRunner records invocations and replies from a script keyed by the
// command's first argument.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   [][]string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	key := args[0]
	if err, ok := r.errs[key]; ok {
		return "", err
	}
	return r.outputs[key], nil
}

func newTestService(r *fakeRunner) *Service {
	return NewService(Options{Runner: r, Logger: log.NewNoopLogger()})
}

func TestListNetworkServiceNames(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"-listallnetworkservices": "An asterisk (*) denotes that a network service is disabled.\n" +
			"Wi-Fi\n" +
			"*Thunderbolt Bridge\n" +
			"Ethernet\n",
	}}
	svc := newTestService(runner)

	names, err := svc.ListNetworkServiceNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Wi-Fi", "Thunderbolt Bridge", "Ethernet"}, names)
}

func TestListNetworkServiceNames_CommandFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"-listallnetworkservices": errors.New("command not found"),
	}}
	svc := newTestService(runner)

	_, err := svc.ListNetworkServiceNames(context.Background())
	assert.Error(t, err)
}

func TestListNetworkInterfaceNames(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"-listallhardwareports": "Hardware Port: Wi-Fi\n" +
			"Device: en0\n" +
			"Ethernet Address: aa:bb:cc:dd:ee:ff\n" +
			"\n" +
			"Hardware Port: Thunderbolt Bridge\n" +
			"Device: bridge0\n" +
			"Ethernet Address: 11:22:33:44:55:66\n",
	}}
	svc := newTestService(runner)

	names, err := svc.ListNetworkInterfaceNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"en0", "bridge0"}, names)
}

func TestGetConfiguredDNS(t *testing.T) {
	t.Run("servers set", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"-getdnsservers": "1.1.1.1\n8.8.8.8",
		}}
		svc := newTestService(runner)

		servers, err := svc.GetConfiguredDNS(context.Background(), "Wi-Fi")
		require.NoError(t, err)
		assert.Equal(t, []string{"1.1.1.1", "8.8.8.8"}, servers)
	})

	t.Run("no override", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"-getdnsservers": "There aren't any DNS Servers set on Wi-Fi.",
		}}
		svc := newTestService(runner)

		servers, err := svc.GetConfiguredDNS(context.Background(), "Wi-Fi")
		require.NoError(t, err)
		assert.Nil(t, servers)
	})
}

func TestSetConfiguredDNS(t *testing.T) {
	t.Run("with servers", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{}}
		svc := newTestService(runner)

		err := svc.SetConfiguredDNS(context.Background(), "Wi-Fi", []string{"1.1.1.1", "9.9.9.9"})
		require.NoError(t, err)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"networksetup", "-setdnsservers", "Wi-Fi", "1.1.1.1", "9.9.9.9"}, runner.calls[0])
	})

	t.Run("clearing uses Empty", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{}}
		svc := newTestService(runner)

		err := svc.SetConfiguredDNS(context.Background(), "Wi-Fi", nil)
		require.NoError(t, err)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"networksetup", "-setdnsservers", "Wi-Fi", "Empty"}, runner.calls[0])
	})

	t.Run("invalid address rejected without running", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{}}
		svc := newTestService(runner)

		err := svc.SetConfiguredDNS(context.Background(), "Wi-Fi", []string{"not-an-ip"})
		assert.Error(t, err)
		assert.Empty(t, runner.calls)
	})
}

func TestResolverServers(t *testing.T) {
	t.Run("resolv.conf first", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "resolv.conf")
		require.NoError(t, os.WriteFile(path, []byte("nameserver 1.1.1.1\n"), 0o644))

		runner := &fakeRunner{}
		svc := newTestService(runner)
		svc.resolvConf = path

		servers, err := svc.ResolverServers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"1.1.1.1"}, servers)
		assert.Empty(t, runner.calls)
	})

	t.Run("falls back to scutil", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"--dns": "DNS configuration\n" +
				"resolver #1\n" +
				"  nameserver[0] : 8.8.8.8\n" +
				"  nameserver[1] : 8.8.4.4\n" +
				"resolver #2\n" +
				"  nameserver[0] : 8.8.8.8\n",
		}}
		svc := newTestService(runner)
		svc.resolvConf = filepath.Join(t.TempDir(), "missing")

		servers, err := svc.ResolverServers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"8.8.8.8", "8.8.4.4"}, servers)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"scutil", "--dns"}, runner.calls[0])
	})

	t.Run("nothing found", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{"--dns": "DNS configuration\n"}}
		svc := newTestService(runner)
		svc.resolvConf = filepath.Join(t.TempDir(), "missing")

		_, err := svc.ResolverServers(context.Background())
		assert.Error(t, err)
	})
}

func TestParseResolvConf(t *testing.T) {
	text := strings.Join([]string{
		"# generated by resolvconf",
		"; another comment style",
		"domain example.com",
		"nameserver 1.1.1.1",
		"nameserver 2606:4700:4700::1111",
		"nameserver not-an-ip",
		"nameserver",
		"search example.com",
	}, "\n")

	assert.Equal(t, []string{"1.1.1.1", "2606:4700:4700::1111"}, parseResolvConf(text))
	assert.Nil(t, parseResolvConf("# empty\n"))
}
