// Command bidsmanager is the CLI entrypoint for managing BIDS-named
// neuroimaging files and their JSON sidecars.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/bidsmanager/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel on SIGINT/SIGTERM so a batch stops between files rather than
	// mid-copy.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "bidsmanager: received interrupt, finishing current file…")
			cancel()
		case <-ctx.Done():
		}
	}()

	return cli.Execute(ctx)
}
