package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewShowCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show document metadata from the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			doc, err := s.Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return outputJSON(out, doc)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", doc.ID)
			fmt.Fprintf(w, "Title:\t%s\n", doc.Title)
			fmt.Fprintf(w, "URL:\t%s\n", doc.URL)
			if !doc.UpdatedAt.IsZero() {
				fmt.Fprintf(w, "Updated:\t%s\n", doc.UpdatedAt.Format(time.RFC3339))
			}
			if doc.PDFName != "" {
				fmt.Fprintf(w, "PDF:\t%s\n", doc.PDFName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output metadata as JSON")
	return cmd
}
