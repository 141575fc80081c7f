package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-docnav/internal/render"
	"github.com/mattsolo1/grove-docnav/pkg/service"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		query      string
		expandAll  bool
		showKeys   bool
		showIDs    bool
		jsonOutput bool
		yamlOutput bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the document tree",
		Long: `Build the navigation tree from the configured source and print it.

With --query, branches containing a match are expanded and the matched
part of each label is highlighted.

Examples:
  docnav tree                     # Top level only
  docnav tree --all               # Every folder expanded
  docnav tree -q setup            # Reveal nodes matching "setup"
  docnav tree --json              # Full tree as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			snap, err := s.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return outputJSON(out, snap.Root)
			}
			if yamlOutput {
				return outputYAML(out, snap.Root)
			}

			var expanded []string
			if expandAll {
				expanded = folderKeys(snap.Root)
			}
			rows := s.Rows(query, expanded...)

			r := render.New(
				render.WithColor(viper.GetBool("color") && !noColor),
				render.WithIDs(showIDs),
			)
			if showKeys {
				return r.Keys(out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No documents found")
				return nil
			}
			return r.Rows(out, rows)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Expand and highlight nodes whose label contains this text")
	cmd.Flags().BoolVarP(&expandAll, "all", "a", false, "Expand every folder")
	cmd.Flags().BoolVar(&showKeys, "keys", false, "Print node keys and paths instead of the tree")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show document ids next to leaves")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the tree as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output the tree as YAML")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable styled output")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml", "keys")

	return cmd
}

func folderKeys(root *tree.Node) []string {
	var keys []string
	tree.Walk(root, func(n, _ *tree.Node, _ int) bool {
		if len(n.Children) > 0 {
			keys = append(keys, n.Key)
		}
		return true
	})
	return keys
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
