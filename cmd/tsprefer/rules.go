package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"github.com/tsgonest/tsprefer/internal/config"
	"github.com/tsgonest/tsprefer/internal/rules"
)

type ruleListing struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DefaultSeverity string   `json:"defaultSeverity"`
	Fixable         bool     `json:"fixable"`
	Options         []string `json:"options,omitempty"`
}

func newRulesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := config.DefaultConfig()
			var listings []ruleListing
			for _, info := range rules.Catalog() {
				listings = append(listings, ruleListing{
					Name:            info.Name,
					Description:     info.Description,
					DefaultSeverity: defaults.Rules[info.Name].Severity,
					Fixable:         info.Fixable,
					Options:         info.Options,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := json.MarshalWrite(out, listings, jsontext.WithIndent("  ")); err != nil {
					return failure(err)
				}
				fmt.Fprintln(out)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tDEFAULT\tFIXABLE\tOPTIONS\tDESCRIPTION")
			for _, l := range listings {
				fixable := "no"
				if l.Fixable {
					fixable = "yes"
				}
				options := "-"
				if len(l.Options) > 0 {
					options = strings.Join(l.Options, ", ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.Name, l.DefaultSeverity, fixable, options, l.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the rule list as JSON")
	return cmd
}
