package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/parking"
	"github.com/hakim/domainvet/internal/pipeline"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the heuristic profiles",
	Long: `Show every built-in heuristic profile with the size of its parking corpus and
whether dead domains with MX records are classified Risky.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Profile\tKeywords\tURL patterns\tParking MX\tRules\tRisky tier\tDescription")
		fmt.Fprintln(w, "-------\t--------\t------------\t----------\t-----\t----------\t-----------")

		for _, name := range pipeline.ProfileNames() {
			p, err := pipeline.GetProfile(name)
			if err != nil {
				return err
			}
			c := p.Corpus()
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%v\t%s\n",
				p.Name, len(c.Keywords), len(c.URLPatterns), len(c.ParkingMX), len(c.Rules), p.Policy.RiskyTier, p.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("Structural rules: %s\n", strings.Join(parking.KnownRules(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
