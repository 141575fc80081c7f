package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewSearchCmd(svc **service.Service) *cobra.Command {
	var (
		jsonOutput  bool
		searchLimit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search through the document backend",
		Long: `Run a full-text search on the configured backend and print the hits
with their highlighted fragments.

Examples:
  docnav search "quarterly report"
  docnav search invoice --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			query := joinArgs(args)
			if query == "" {
				return errors.New("query must not be blank")
			}

			hits, err := s.SearchDocuments(cmd.Context(), query)
			if err != nil {
				return err
			}
			if searchLimit > 0 && len(hits) > searchLimit {
				hits = hits[:searchLimit]
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if hits == nil {
					hits = []models.SearchHit{}
				}
				return outputJSON(out, hits)
			}
			if len(hits) == 0 {
				fmt.Fprintf(out, "No results found for %q\n", query)
				return nil
			}

			fmt.Fprintf(out, "Found %d results for %q:\n\n", len(hits), query)
			for _, h := range hits {
				title := h.Title
				if title == "" {
					title = h.Name
				}
				fmt.Fprintf(out, "%s  %s\n", h.ID, title)
				if h.URL != "" {
					fmt.Fprintf(out, "    %s\n", h.URL)
				}
				for _, frag := range h.Highlights {
					fmt.Fprintf(out, "    ... %s ...\n", strings.TrimSpace(frag))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output hits as JSON")
	cmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (0 = all)")
	return cmd
}
