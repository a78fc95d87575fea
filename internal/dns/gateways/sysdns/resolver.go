package sysdns

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
)

const resolvConfPath = "/etc/resolv.conf"

// ResolverServers reads the nameservers the OS resolver is actually
// using right now. This is independent of the per-service overrides
// managed through networksetup: it reflects the merged, active
// configuration. /etc/resolv.conf is consulted first; when it is
// missing or empty the scoped resolver state is read via scutil.
func (s *Service) ResolverServers(ctx context.Context) ([]string, error) {
	if data, err := os.ReadFile(s.resolvConf); err == nil {
		if servers := parseResolvConf(string(data)); len(servers) > 0 {
			return servers, nil
		}
	}

	out, err := s.runner.Run(ctx, "scutil", "--dns")
	if err != nil {
		return nil, fmt.Errorf("reading resolver configuration: %w", err)
	}
	servers := parseScutilDNS(out)
	if len(servers) == 0 {
		return nil, fmt.Errorf("no nameservers found in resolver configuration")
	}
	return servers, nil
}

// parseResolvConf extracts nameserver entries from resolv.conf text,
// skipping comments and malformed addresses.
func parseResolvConf(text string) []string {
	var servers []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "nameserver" {
			continue
		}
		if net.ParseIP(fields[1]) != nil {
			servers = append(servers, fields[1])
		}
	}
	return servers
}

// parseScutilDNS extracts "nameserver[N] : addr" entries from scutil
// --dns output, deduplicated in first-seen order. The same server
// typically appears once per scoped resolver.
func parseScutilDNS(text string) []string {
	var servers []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "nameserver[") {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		addr := strings.TrimSpace(value)
		if net.ParseIP(addr) == nil {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		servers = append(servers, addr)
	}
	return servers
}
