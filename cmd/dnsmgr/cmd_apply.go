package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <dns-server>...",
		Short: "Apply DNS servers to every network service (backing up first)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := buildManager()
			if err != nil {
				return err
			}
			return m.Apply(cmd.Context(), args)
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the DNS configuration saved before the last set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := buildManager()
			if err != nil {
				return err
			}
			return m.Restore(cmd.Context())
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-service DNS overrides and the active resolvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, _, err := buildManager()
			if err != nil {
				return err
			}
			st, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range st.Services {
				if len(s.Servers) == 0 {
					cmd.Printf("%s: (DHCP)\n", s.Service)
				} else {
					cmd.Printf("%s: %s\n", s.Service, strings.Join(s.Servers, " "))
				}
			}
			if len(st.ResolverServers) > 0 {
				cmd.Printf("active resolvers: %s\n", strings.Join(st.ResolverServers, " "))
			}
			if st.BackupPresent {
				cmd.Println("backup present: a restore is pending")
			}
			return nil
		},
	}
}
