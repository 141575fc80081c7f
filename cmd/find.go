package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewFindCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Find nodes whose label contains the query",
		Long: `Match the query against every node label and print the keys of the
folders that must be expanded to reveal the matches, followed by the
matching nodes themselves. Matching is literal and case-insensitive.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			query := joinArgs(args)
			if query == "" {
				return errors.New("query must not be blank")
			}
			if _, err := s.Refresh(cmd.Context()); err != nil {
				return err
			}

			res := s.Query(query)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return outputJSON(out, res)
			}
			if len(res.Matches) == 0 {
				fmt.Fprintf(out, "No nodes match %q\n", query)
				return nil
			}

			fmt.Fprintln(out, "Expand:")
			for _, k := range res.ExpandedKeys {
				fmt.Fprintf(out, "  %s\n", k)
			}
			fmt.Fprintln(out, "Matches:")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, m := range res.Matches {
				fmt.Fprintf(w, "  %s\t%s\n", m.Key, m.Label)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	return cmd
}
