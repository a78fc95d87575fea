package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
	"github.com/dnsforge/dnsmgr/internal/dns/config"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/backup"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/query"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/sysdns"
	"github.com/dnsforge/dnsmgr/internal/dns/services/manager"
)

const (
	appName = "dnsmgr"
	version = "0.1.0"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Manage system DNS settings and probe resolvers",
		Long: "dnsmgr applies and restores per-service system DNS overrides,\n" +
			"inspects the active resolver configuration, and issues single-shot\n" +
			"DNS queries against a chosen server.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
			return err
		}
		return nil
	}

	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newServicesCmd())
	cmd.AddCommand(newInterfacesCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newStatusCmd())
	return cmd
}

// buildManager wires the gateways into a manager using the current
// configuration. Each command invocation builds its own instance.
func buildManager() (*manager.Manager, *config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := log.GetLogger()

	m, err := manager.New(manager.Options{
		Sys:    sysdns.NewService(sysdns.Options{Logger: logger}),
		Backup: backup.NewStore(cfg.BackupPath, logger),
		Prober: query.New(query.Options{Server: cfg.Server, Logger: logger}),
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}
