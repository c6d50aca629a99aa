package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/bidsmanager/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bidsmanager version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "bidsmanager v"+config.Version)
		},
	}
}
