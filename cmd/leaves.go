package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewLeavesCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "leaves <key>",
		Short: "List the document ids under a node",
		Long: `Print the external id of every document at or below the node with the
given key. Keys are shown by 'docnav tree --keys' and 'docnav find' and
stay the same between runs for the same path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if _, err := s.Refresh(cmd.Context()); err != nil {
				return err
			}

			ids, err := s.LeafIDs(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if ids == nil {
					ids = []string{}
				}
				return outputJSON(out, ids)
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output ids as a JSON array")
	return cmd
}
