package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	placephotos "github.com/mekanbudur/go-placephotos"
)

func newFetchCommand(configFlag *string) *cobra.Command {
	var force bool
	var limit int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Search, download, and record a best-effort photo for every place",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(*configFlag)
			if err != nil {
				return err
			}
			cfg := appCfg.pipelineConfig()
			if cmd.Flags().Changed("force") {
				cfg.Force = force
			}
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
			}

			entities, err := placephotos.LoadEntities(appCfg.Paths.AppJS)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d places in %s\n", len(entities), appCfg.Paths.AppJS)

			overrides := cfg.LoadOverrides(appCfg.Paths.Overrides)

			unlock, err := acquireRunLock(cfg.OutDir)
			if err != nil {
				return err
			}
			defer unlock()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			manifest, err := cfg.Resolve(ctx, entities, overrides)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			resolved := 0
			for _, rec := range manifest.Items {
				if rec.Resolved() {
					resolved++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest: %s (%d/%d resolved)\n",
				cfg.ManifestPath(), resolved, len(manifest.Items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-download even when a local file exists")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many places")

	return cmd
}

// acquireRunLock takes the advisory lock guarding the output directory. The
// manifest has a single logical owner; a second concurrent run would
// interleave writes, so it fails fast instead.
func acquireRunLock(outDir string) (func(), error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(outDir, ".placephotos.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("another run is already using %s", outDir)
	}
	return func() { _ = lock.Unlock() }, nil
}
