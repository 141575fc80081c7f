package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/service"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

func NewSyncCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the file listing and store it in the local catalog",
		Long: `Fetch the listing from the configured source, rebuild the tree and
replace the local catalog. Paths claimed by more than one document are
reported; under duplicate_policy=reject the sync fails and the catalog
is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			snap, err := s.Refresh(cmd.Context())
			if err != nil && !errors.Is(err, service.ErrDuplicatePath) {
				return fmt.Errorf("sync failed: %w", err)
			}

			size, cerr := s.CatalogSize(cmd.Context())
			if cerr != nil {
				return cerr
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if jerr := outputJSON(out, syncReport(snap, size)); jerr != nil {
					return jerr
				}
				return err
			}

			nodes, leaves := tree.Count(snap.Root)
			fmt.Fprintf(out, "Synced %d records into %d nodes (%d documents)\n", snap.Records, nodes, leaves)
			fmt.Fprintf(out, "Catalog holds %d records\n", size)
			if len(snap.Dropped) > 0 {
				fmt.Fprintf(out, "Ignored %d identifiers without a path\n", len(snap.Dropped))
			}
			for _, c := range snap.Conflicts {
				fmt.Fprintf(out, "Conflict at %s: kept %s, discarded %s\n", c.Path, c.Kept, c.Discarded)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the sync report as JSON")
	return cmd
}

type report struct {
	Generation uint64          `json:"generation"`
	Records    int             `json:"records"`
	Nodes      int             `json:"nodes"`
	Documents  int             `json:"documents"`
	Catalog    int             `json:"catalog"`
	Dropped    []string        `json:"dropped"`
	Conflicts  []tree.Conflict `json:"conflicts"`
}

func syncReport(snap *service.Snapshot, catalogSize int) report {
	nodes, leaves := tree.Count(snap.Root)
	r := report{
		Generation: snap.Generation,
		Records:    snap.Records,
		Nodes:      nodes,
		Documents:  leaves,
		Catalog:    catalogSize,
		Dropped:    snap.Dropped,
		Conflicts:  snap.Conflicts,
	}
	if r.Dropped == nil {
		r.Dropped = []string{}
	}
	if r.Conflicts == nil {
		r.Conflicts = []tree.Conflict{}
	}
	return r
}
