package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/backmassage/bidsmanager/internal/bids"
	"github.com/backmassage/bidsmanager/internal/display"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>...",
		Short: "Print the entities and sidecar metadata of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for i, p := range args {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := a.show(cmd.OutOrStdout(), p); err != nil {
					a.log.Error("%v", err)
					failed++
				}
			}
			return failedErr(failed)
		},
	}
}

func (a *app) show(w io.Writer, path string) error {
	img, err := a.store.Open(path)
	if err != nil {
		return err
	}
	v := display.ImageView{Image: img, Size: -1}
	if fi, err := a.store.Stat(path); err == nil {
		v.Size = fi.Size()
	}

	if img.Extension() != ".json" {
		if v.Sidecar, err = img.SidecarPath(); err != nil {
			return err
		}
		m, err := img.Metadata()
		switch {
		case errors.Is(err, bids.ErrMissingSidecar):
			v.Sidecar += " (missing)"
		case err != nil:
			return err
		default:
			v.Metadata = m
		}
	}
	return display.WriteImage(w, v)
}
