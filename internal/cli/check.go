package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/bidsmanager/internal/check"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Report filename and sidecar problems without changing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r := check.RunCheck(a.store, args, a.log, a.cfg.Verbose)
			if r.Failed() {
				return fmt.Errorf("%w: %d error(s)", errFailed, r.Errors)
			}
			return nil
		},
	}
}
