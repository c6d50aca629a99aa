package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/backmassage/bidsmanager/internal/bids"
	"github.com/backmassage/bidsmanager/internal/pipeline"
)

func newRenameCmd(a *app) *cobra.Command {
	var (
		sets     []string
		copyMode bool
	)
	cmd := &cobra.Command{
		Use:     "rename <file>...",
		Aliases: []string{"mv"},
		Short:   "Change entity values and move (or copy) each file and sidecar to match",
		Example: "  bidsmanager rename --set acq=mprage --set run=2 sub-01_T1w.nii.gz\n" +
			"  bidsmanager rename --copy --set ses=post --set dest=/data/sub-01/ses-post/anat sub-01_ses-pre_T1w.nii.gz",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := pipeline.ParseEdits(sets)
			if err != nil {
				return err
			}
			if len(edits) == 0 {
				return errors.New("nothing to change: pass at least one --set key=value")
			}
			job := pipeline.Job{Edits: edits, Mode: bids.Move}
			if copyMode {
				job.Mode = bids.Copy
			}
			return a.runJob(cmd.Context(), args, job)
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Field change key=value; key= removes an entity (repeatable)")
	cmd.Flags().BoolVarP(&copyMode, "copy", "c", false, "Copy instead of move; originals stay in place")
	return cmd
}
