package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewFilesCmd(svc **service.Service) *cobra.Command {
	var (
		jsonOutput bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:     "files [filter]",
		Aliases: []string{"ls"},
		Short:   "List cached file records",
		Long: `List the records stored by the last sync, optionally filtered by a
case-insensitive match on the URL or file name.

Examples:
  docnav files             # Everything in the catalog
  docnav files report      # Records whose URL or name contains "report"
  docnav files --refresh   # Sync first, then list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := cmd.Context()
			if refresh {
				if _, err := s.Refresh(ctx); err != nil {
					return err
				}
			}

			records, err := s.Records(ctx, joinArgs(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if records == nil {
					records = []models.FileRecord{}
				}
				return outputJSON(out, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No files found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Filename(), r.URL)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output records as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Sync from the configured source before listing")
	return cmd
}
