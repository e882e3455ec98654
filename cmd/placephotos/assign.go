package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	placephotos "github.com/mekanbudur/go-placephotos"
)

func newAssignCommand(configFlag *string) *cobra.Command {
	var keyFlag string
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign local image files to places, updating the manifest after each",
		Long: `Assign copies hand-picked images into the output directory under each
place's normalized key and flushes the manifest immediately, so the website
can show the photo right away.

With --key and --file a single place is assigned non-interactively. Without
them the command walks every place in list order and prompts for a path
(Enter skips a place that already has a photo; s skips, r replaces, q quits).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(*configFlag)
			if err != nil {
				return err
			}
			cfg := appCfg.pipelineConfig()

			entities, err := placephotos.LoadEntities(appCfg.Paths.AppJS)
			if err != nil {
				return err
			}

			unlock, err := acquireRunLock(cfg.OutDir)
			if err != nil {
				return err
			}
			defer unlock()

			manifest := placephotos.LoadManifest(cfg.ManifestPath(), time.Now())
			manifest.MergePreseed(entities, cfg.OutDir, cfg.WebRoot)
			if err := manifest.Write(cfg.ManifestPath(), time.Now()); err != nil {
				return err
			}

			if keyFlag != "" || fileFlag != "" {
				if keyFlag == "" || fileFlag == "" {
					return errors.New("--key and --file must be used together")
				}
				return assignOne(cmd, cfg, manifest, entities, keyFlag, fileFlag)
			}
			return assignInteractive(cmd, cfg, manifest, entities)
		},
	}

	cmd.Flags().StringVar(&keyFlag, "key", "", "Normalized place key (or exact place name)")
	cmd.Flags().StringVar(&fileFlag, "file", "", "Path to a local jpg/png/webp image")

	return cmd
}

func assignOne(cmd *cobra.Command, cfg *placephotos.Config, manifest *placephotos.Manifest, entities []placephotos.Entity, key, file string) error {
	for _, ent := range entities {
		k := placephotos.NormalizeKey(ent.Name)
		if k != key && k != placephotos.NormalizeKey(key) {
			continue
		}
		dest, err := cfg.AssignLocalFile(manifest, ent, file)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s -> %s\n", ent.Name, dest)
		return nil
	}
	return fmt.Errorf("no place matches key %q", key)
}

func assignInteractive(cmd *cobra.Command, cfg *placephotos.Config, manifest *placephotos.Manifest, entities []placephotos.Entity) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	updated, skipped := 0, 0

	fmt.Fprintln(out, "Manual place photo assignment")
	fmt.Fprintln(out, "Controls: Enter=skip existing / choose, s=skip, r=replace, q=quit")
	fmt.Fprintln(out)

	for i, ent := range entities {
		key := placephotos.NormalizeKey(ent.Name)
		if key == "" {
			skipped++
			continue
		}

		existing := placephotos.FindLocalFile(cfg.OutDir, key)
		hasPhoto := existing != ""

		fmt.Fprintf(out, "[%d/%d] %s  (category: %s)\n", i+1, len(entities), ent.Name, ent.Category)
		if hasPhoto {
			fmt.Fprintf(out, "  current: %s\n", existing)
			fmt.Fprint(out, "  [Enter]=skip, (r)eplace, (s)kip, (q)uit: ")
		} else {
			fmt.Fprintln(out, "  current: none")
			fmt.Fprint(out, "  [Enter]=choose, (s)kip, (q)uit: ")
		}

		if !in.Scan() {
			break
		}
		action := strings.ToLower(strings.TrimSpace(in.Text()))

		if action == "q" {
			fmt.Fprintln(out, "Quit.")
			break
		}
		if action == "s" || (hasPhoto && action == "") {
			skipped++
			continue
		}

		fmt.Fprint(out, "  image path (jpg/png/webp), empty to cancel: ")
		if !in.Scan() {
			break
		}
		path := strings.TrimSpace(in.Text())
		if path == "" {
			skipped++
			continue
		}

		dest, err := cfg.AssignLocalFile(manifest, ent, path)
		if err != nil {
			if errors.Is(err, placephotos.ErrUnsupportedImage) {
				fmt.Fprintf(out, "  ERROR: %v\n\n", err)
				skipped++
				continue
			}
			return err
		}
		updated++
		fmt.Fprintf(out, "  saved: %s\n\n", dest)
	}

	// One final flush so the manifest exists even when nothing changed.
	if err := manifest.Write(cfg.ManifestPath(), time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Done. Updated: %d, skipped: %d\n", updated, skipped)
	return nil
}
