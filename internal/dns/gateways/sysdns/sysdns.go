// Package sysdns wraps the platform tooling that manages system
// resolver settings: network service enumeration and per-service DNS
// overrides via networksetup, plus direct enumeration of the active
// resolver's nameservers. All shell access goes through an injectable
// Runner so the package is testable without touching the OS.
package sysdns

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
)

// Runner executes one external command and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%s %s: %s: %w", name, strings.Join(args, " "), strings.TrimSpace(string(ee.Stderr)), err)
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Service exposes the system DNS configuration operations.
type Service struct {
	runner     Runner
	logger     log.Logger
	resolvConf string
}

// Options configures a Service. A nil Runner selects the real
// exec-based one; a nil Logger selects the global logger.
type Options struct {
	Runner Runner
	Logger log.Logger
}

// NewService creates a system DNS service.
func NewService(opts Options) *Service {
	if opts.Runner == nil {
		opts.Runner = execRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Service{runner: opts.Runner, logger: opts.Logger, resolvConf: resolvConfPath}
}

// ListNetworkServiceNames enumerates the configurable network services
// (e.g. "Wi-Fi", "Ethernet").
func (s *Service) ListNetworkServiceNames(ctx context.Context) ([]string, error) {
	out, err := s.runner.Run(ctx, "networksetup", "-listallnetworkservices")
	if err != nil {
		return nil, err
	}
	var services []string
	for i, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if i == 0 && strings.Contains(line, "asterisk") {
			// First line is the "An asterisk (*) denotes..." banner.
			continue
		}
		// A leading asterisk marks a disabled service.
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line != "" {
			services = append(services, line)
		}
	}
	return services, nil
}

// ListNetworkInterfaceNames enumerates the hardware interface device
// names (e.g. "en0").
func (s *Service) ListNetworkInterfaceNames(ctx context.Context) ([]string, error) {
	out, err := s.runner.Run(ctx, "networksetup", "-listallhardwareports")
	if err != nil {
		return nil, err
	}
	var devices []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if dev, ok := strings.CutPrefix(line, "Device: "); ok && dev != "" {
			devices = append(devices, dev)
		}
	}
	return devices, nil
}

// GetConfiguredDNS returns the DNS servers explicitly configured for a
// network service. A nil slice with nil error means no override is set
// (the service follows DHCP).
func (s *Service) GetConfiguredDNS(ctx context.Context, service string) ([]string, error) {
	out, err := s.runner.Run(ctx, "networksetup", "-getdnsservers", service)
	if err != nil {
		return nil, err
	}
	// networksetup answers in prose when no servers are set.
	if strings.Contains(out, "any DNS Servers") {
		return nil, nil
	}
	var servers []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			servers = append(servers, line)
		}
	}
	return servers, nil
}

// SetConfiguredDNS sets the DNS override for a network service. An
// empty values slice clears the override ("Empty" in networksetup
// terms), returning the service to DHCP-provided resolvers.
func (s *Service) SetConfiguredDNS(ctx context.Context, service string, values []string) error {
	args := []string{"-setdnsservers", service}
	if len(values) == 0 {
		args = append(args, "Empty")
	} else {
		for _, v := range values {
			if net.ParseIP(v) == nil {
				return fmt.Errorf("invalid DNS server address %q", v)
			}
			args = append(args, v)
		}
	}
	if _, err := s.runner.Run(ctx, "networksetup", args...); err != nil {
		return err
	}
	s.logger.Info(map[string]any{
		"service": service,
		"servers": values,
	}, "Updated system DNS")
	return nil
}
