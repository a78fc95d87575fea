package manager

import (
	"context"

	"github.com/dnsforge/dnsmgr/internal/dns/domain"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/query"
)

// SystemDNS is the slice of the sysdns gateway the manager needs.
type SystemDNS interface {
	ListNetworkServiceNames(ctx context.Context) ([]string, error)
	GetConfiguredDNS(ctx context.Context, service string) ([]string, error)
	SetConfiguredDNS(ctx context.Context, service string, values []string) error
	ResolverServers(ctx context.Context) ([]string, error)
}

// BackupStore persists the pre-change DNS configuration.
type BackupStore interface {
	Exists() bool
	Save(entries map[string]string) error
	Load() (map[string]string, error)
	Delete() error
}

// Prober issues one DNS query and returns the decoded response.
type Prober interface {
	Query(ctx context.Context, req query.Request) (domain.Message, error)
}
