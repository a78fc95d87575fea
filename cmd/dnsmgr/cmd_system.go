package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/sysdns"
)

func newServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List configurable network services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := sysdns.NewService(sysdns.Options{Logger: log.GetLogger()})
			names, err := svc.ListNetworkServiceNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}
}

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List network interface device names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := sysdns.NewService(sysdns.Options{Logger: log.GetLogger()})
			names, err := svc.ListNetworkInterfaceNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <service>",
		Short: "Show the DNS servers configured for a network service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := sysdns.NewService(sysdns.Options{Logger: log.GetLogger()})
			servers, err := svc.GetConfiguredDNS(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				cmd.Println("(no DNS override; service follows DHCP)")
				return nil
			}
			cmd.Println(strings.Join(servers, "\n"))
			return nil
		},
	}
}
