package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnsforge/dnsmgr/internal/dns/domain"
)

func newQueryCmd() *cobra.Command {
	var (
		qtypeName string
		server    string
	)

	cmd := &cobra.Command{
		Use:   "query <name>",
		Short: "Resolve a name with a single UDP query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qtype, ok := domain.RRTypeFromString(qtypeName)
			if !ok {
				return fmt.Errorf("unknown record type %q", qtypeName)
			}

			m, cfg, err := buildManager()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			res, err := m.Verify(ctx, args[0], qtype, server)
			if err != nil {
				return err
			}

			printResponse(cmd, res.Message)
			cmd.Printf(";; rtt: %s\n", res.RTT.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&qtypeName, "type", "t", "A", "record type to query (A, AAAA, CNAME, TXT, ...)")
	cmd.Flags().StringVarP(&server, "server", "s", "", "resolver address ip:port (default from config)")
	return cmd
}

func printResponse(cmd *cobra.Command, msg domain.Message) {
	cmd.Printf(";; id: %d, rcode: %s, answers: %d\n", msg.ID, msg.RCode(), len(msg.Answers))
	for _, q := range msg.Questions {
		cmd.Printf(";; question: %s %s %s\n", q.Name, q.Class, q.Type)
	}
	sections := []struct {
		label string
		rrs   []domain.ResourceRecord
	}{
		{"answer", msg.Answers},
		{"authority", msg.Authority},
		{"additional", msg.Additional},
	}
	for _, sec := range sections {
		for _, rr := range sec.rrs {
			cmd.Printf("%s\t%d\t%s\t%s\t%s\t; %s\n", rr.Name, rr.TTL, rr.Class, rr.Type, rr.Data, sec.label)
		}
	}
}
