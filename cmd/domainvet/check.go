package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/dnscheck"
	"github.com/hakim/domainvet/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [domain]",
	Short: "Check that the configured nameservers answer",
	Long: `Verify that every configured nameserver (or the system resolvers when none
are configured) answers a root NS query within the DNS timeout.

When a domain is given, the full validation is also run for it and the gathered
DNS evidence and liveness outcome are printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()

		// Resolve the nameserver list the same way the checker does
		servers := dnscheck.New(dnscheck.Options{Nameservers: cfg.DNS.Nameservers}).Nameservers()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Nameserver\tStatus\tDetail")
		fmt.Fprintln(w, "----------\t------\t------")

		failed := 0
		for _, ns := range servers {
			c := dnscheck.New(dnscheck.Options{
				Nameservers: []string{ns},
				Timeout:     cfg.Timeouts.DNS,
				Logger:      appLog,
			})
			status, detail := "[+]", "ok"
			if err := c.Ping(ctx); err != nil {
				status, detail = "[-]", err.Error()
				failed++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", ns, status, detail)
		}
		w.Flush()

		fmt.Println()
		fmt.Printf("Summary: %d/%d nameservers answering\n", len(servers)-failed, len(servers))

		if len(args) == 1 {
			if err := checkDomain(ctx, args[0]); err != nil {
				return err
			}
		}

		if len(servers) == 0 || failed == len(servers) {
			return fmt.Errorf("no nameserver is answering")
		}
		return nil
	},
}

// checkDomain runs a single validation and prints the evidence behind it.
func checkDomain(ctx context.Context, domain string) error {
	components, err := pipeline.Build(cfg, appLog)
	if err != nil {
		return err
	}

	res := components.Engine.Validate(ctx, domain)
	ev := res.DNS

	fmt.Println()
	fmt.Printf("[*] %s (profile %s, corpus %s, %d parking MX patterns)\n",
		res.Domain, components.Profile.Name, components.Corpus.Version, len(components.Corpus.ParkingMX))
	fmt.Printf("    MX:        %v %s\n", ev.HasMX, strings.Join(ev.MXHosts, ", "))
	fmt.Printf("    A:         %v\n", ev.HasA)
	fmt.Printf("    SPF:       %s\n", orNone(ev.SPFRecord))
	fmt.Printf("    DMARC:     %s\n", orNone(ev.DMARCRecord))
	if ev.ParkingMXHost != "" {
		fmt.Printf("    ParkingMX: %s\n", ev.ParkingMXHost)
	}
	for rt, kind := range ev.Failures {
		fmt.Printf("    %-10s %s\n", string(rt)+":", kind)
	}
	if res.Liveness != nil {
		fmt.Printf("    Liveness:  %s (%s)\n", res.Liveness.Kind, res.Liveness.Detail)
		for _, a := range res.Liveness.Attempts {
			outcome := "ok"
			if !a.Success {
				outcome = "failed"
				if a.Error != "" {
					outcome += ": " + a.Error
				}
			}
			fmt.Printf("      - %-10s %s %s\n", a.Step, a.Target, outcome)
		}
	}
	fmt.Printf("    Verdict:   %s (%s)\n", res.Classification, res.Reason)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
