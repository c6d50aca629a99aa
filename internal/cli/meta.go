package cli

import (
	"errors"
	"maps"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/backmassage/bidsmanager/internal/bids"
	"github.com/backmassage/bidsmanager/internal/metafile"
	"github.com/backmassage/bidsmanager/internal/pipeline"
)

func newMetaCmd(a *app) *cobra.Command {
	var (
		sets []string
		from string
	)
	cmd := &cobra.Command{
		Use:   "meta <file>...",
		Short: "Merge key-value pairs into each file's JSON sidecar",
		Long: "meta merges top-level keys into each file's sidecar, creating the sidecar\n" +
			"when it does not exist. Keys from --from are applied first, then --set.",
		Example: "  bidsmanager meta --set TaskName=rest --set RepetitionTime=2.0 sub-01_task-rest_bold.nii.gz\n" +
			"  bidsmanager meta --from scanner.yaml sub-*_T1w.nii.gz",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			if from != "" {
				m, err := metafile.Load(afero.NewOsFs(), from)
				if err != nil {
					return err
				}
				maps.Copy(patch, m)
			}
			assigned, err := pipeline.ParseAssignments(sets)
			if err != nil {
				return err
			}
			maps.Copy(patch, assigned)
			if len(patch) == 0 {
				return errors.New("nothing to merge: pass --set Key=value or --from FILE")
			}
			return a.runJob(cmd.Context(), args, pipeline.Job{Metadata: patch, Mode: bids.Move})
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Metadata Key=value; values are parsed as YAML scalars (repeatable)")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Read metadata from a .json, .yaml, or .toml file")
	return cmd
}
