// Package manager orchestrates the gateways into the user-facing
// operations: apply a DNS override to every network service (snapshotting
// the previous state first), restore the snapshot, report status, and
// verify resolution through a chosen server with a live query.
package manager

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dnsforge/dnsmgr/internal/dns/common/clock"
	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
	"github.com/dnsforge/dnsmgr/internal/dns/domain"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/query"
)

// Manager wires the system DNS gateway, the backup store, and the query
// client into the tool's top-level operations.
type Manager struct {
	sys    SystemDNS
	backup BackupStore
	prober Prober
	clock  clock.Clock
	logger log.Logger
}

// Options lists the manager's collaborators. Sys, Backup, and Prober
// are required; Clock and Logger default to the real clock and the
// global logger.
type Options struct {
	Sys    SystemDNS
	Backup BackupStore
	Prober Prober
	Clock  clock.Clock
	Logger log.Logger
}

// New creates a Manager.
func New(opts Options) (*Manager, error) {
	if opts.Sys == nil {
		return nil, fmt.Errorf("system DNS gateway is required")
	}
	if opts.Backup == nil {
		return nil, fmt.Errorf("backup store is required")
	}
	if opts.Prober == nil {
		return nil, fmt.Errorf("query prober is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Manager{
		sys:    opts.Sys,
		backup: opts.Backup,
		prober: opts.Prober,
		clock:  opts.Clock,
		logger: opts.Logger,
	}, nil
}

// Apply sets the given DNS servers on every network service. Before the
// first change it snapshots the current per-service configuration into
// the backup store; an existing backup is left untouched so repeated
// applies never overwrite the original state.
func (m *Manager) Apply(ctx context.Context, servers []string) error {
	if len(servers) == 0 {
		return fmt.Errorf("at least one DNS server is required")
	}

	services, err := m.sys.ListNetworkServiceNames(ctx)
	if err != nil {
		return fmt.Errorf("listing network services: %w", err)
	}
	if len(services) == 0 {
		return fmt.Errorf("no network services found")
	}

	if !m.backup.Exists() {
		entries := make(map[string]string, len(services))
		for _, svc := range services {
			current, err := m.sys.GetConfiguredDNS(ctx, svc)
			if err != nil {
				return fmt.Errorf("reading DNS for %q: %w", svc, err)
			}
			entries[svc] = strings.Join(current, " ")
		}
		if err := m.backup.Save(entries); err != nil {
			return err
		}
	}

	for _, svc := range services {
		if err := m.sys.SetConfiguredDNS(ctx, svc, servers); err != nil {
			return fmt.Errorf("setting DNS for %q: %w", svc, err)
		}
	}

	m.logger.Info(map[string]any{
		"servers":  servers,
		"services": len(services),
	}, "Applied DNS override")
	return nil
}

// Restore reapplies the backed-up configuration to every service it
// covers and deletes the backup once everything succeeded.
func (m *Manager) Restore(ctx context.Context) error {
	entries, err := m.backup.Load()
	if err != nil {
		return err
	}

	for svc, joined := range entries {
		// "" means the service had no override before we touched it.
		values := strings.Fields(joined)
		if err := m.sys.SetConfiguredDNS(ctx, svc, values); err != nil {
			return fmt.Errorf("restoring DNS for %q: %w", svc, err)
		}
	}

	if err := m.backup.Delete(); err != nil {
		return err
	}

	m.logger.Info(map[string]any{
		"services": len(entries),
	}, "Restored DNS configuration")
	return nil
}

// ServiceStatus is the configured DNS override of one network service.
type ServiceStatus struct {
	Service string
	Servers []string // nil when the service follows DHCP
}

// Status is a snapshot of the system's DNS configuration.
type Status struct {
	Services        []ServiceStatus
	ResolverServers []string
	BackupPresent   bool
}

// Status reports per-service overrides, the resolver's active
// nameservers, and whether a backup is pending restore.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	services, err := m.sys.ListNetworkServiceNames(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("listing network services: %w", err)
	}

	st := Status{BackupPresent: m.backup.Exists()}
	for _, svc := range services {
		servers, err := m.sys.GetConfiguredDNS(ctx, svc)
		if err != nil {
			return Status{}, fmt.Errorf("reading DNS for %q: %w", svc, err)
		}
		st.Services = append(st.Services, ServiceStatus{Service: svc, Servers: servers})
	}

	resolvers, err := m.sys.ResolverServers(ctx)
	if err != nil {
		m.logger.Warn(map[string]any{"error": err.Error()}, "Could not read resolver servers")
	} else {
		st.ResolverServers = resolvers
	}
	return st, nil
}

// VerifyResult is the outcome of one verification query.
type VerifyResult struct {
	Message domain.Message
	RTT     time.Duration
}

// Verify resolves name against the given server (or the prober's
// default when server is empty) and reports the decoded response with
// the observed round-trip time.
func (m *Manager) Verify(ctx context.Context, name string, qtype domain.RRType, server string) (VerifyResult, error) {
	parsed, err := domain.ParseName(name)
	if err != nil {
		return VerifyResult{}, err
	}

	req := query.Request{
		ID:     uint16(rand.Uint32()),
		Name:   parsed,
		Type:   qtype,
		Server: server,
	}

	start := m.clock.Now()
	msg, err := m.prober.Query(ctx, req)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Message: msg,
		RTT:     m.clock.Now().Sub(start),
	}, nil
}
