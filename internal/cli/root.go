// Package cli wires the bidsmanager commands: show, rename, meta, check,
// and version. Configuration is resolved once per invocation in the root
// command's pre-run hook.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/backmassage/bidsmanager/internal/bids"
	"github.com/backmassage/bidsmanager/internal/config"
	"github.com/backmassage/bidsmanager/internal/logging"
	"github.com/backmassage/bidsmanager/internal/pipeline"
)

// errFailed marks a command whose per-file errors were already logged.
var errFailed = errors.New("one or more files failed")

// app holds the state every command shares once configuration is loaded.
type app struct {
	cfg   *config.Config
	log   *logging.Logger
	store *bids.Store
}

// Execute runs the CLI against os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	root, a := newRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a.log != nil {
		defer a.log.Close()
	}
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, errFailed):
		// Already reported per file.
	case a.log != nil:
		a.log.Error("%v", err)
	default:
		fmt.Fprintf(errOut, "bidsmanager: %v\n", err)
	}
	return 1
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}
	v := viper.New()

	root := &cobra.Command{
		Use:   "bidsmanager",
		Short: "Rename, copy, and annotate BIDS-named neuroimaging files",
		Long: "bidsmanager parses BIDS filenames into their entities, lets you change\n" +
			"entity values, and moves or copies each file and its JSON sidecar to the\n" +
			"path the new values describe.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, v)
		},
	}
	config.DefineFlags(root.PersistentFlags())

	root.AddCommand(
		newShowCmd(a),
		newRenameCmd(a),
		newMetaCmd(a),
		newCheckCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// setup loads configuration, opens the logger, and builds the store.
func (a *app) setup(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Root().PersistentFlags()
	if err := config.BindFlags(flags, v); err != nil {
		return err
	}
	cfgPath, _ := flags.GetString("config")
	cfg, err := config.Load(v, cfgPath)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	fsys := afero.NewOsFs()
	store := bids.NewStore(fsys, bids.NewJSONSidecars(fsys, cfg.SidecarIndent), cfg.ParseOptions())
	store.SetLogger(log, cfg.Verbose)

	a.cfg, a.log, a.store = cfg, log, store
	log.Debug(cfg.Verbose, "Config loaded (strict=%v, dry_run=%v, indent=%d)", cfg.Strict, cfg.DryRun, cfg.SidecarIndent)
	return nil
}

// runJob runs a batch and converts failures into errFailed.
func (a *app) runJob(ctx context.Context, paths []string, job pipeline.Job) error {
	stats := pipeline.Run(ctx, a.cfg, a.log, a.store, paths, job)
	return failedErr(stats.Failed)
}

func failedErr(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%w (%d)", errFailed, n)
}
