package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	placephotos "github.com/mekanbudur/go-placephotos"
)

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the manifest: which places have a photo and where it came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(*configFlag)
			if err != nil {
				return err
			}
			cfg := appCfg.pipelineConfig()

			manifest := placephotos.LoadManifest(cfg.ManifestPath(), time.Now())

			keys := make([]string, 0, len(manifest.Items))
			for k := range manifest.Items {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := table.NewWriter()
			if isatty.IsTerminal(os.Stdout.Fd()) {
				tw.SetStyle(table.StyleRounded)
			} else {
				tw.SetStyle(table.StyleDefault)
			}
			tw.AppendHeader(table.Row{"Key", "Name", "Source", "Path"})

			resolved := 0
			for _, k := range keys {
				rec := manifest.Items[k]
				source, path := "-", "-"
				if rec.Source != nil {
					source = *rec.Source
				}
				if rec.Resolved() {
					path = *rec.Path
					resolved++
				}
				tw.AppendRow(table.Row{k, rec.Name, source, path})
			}
			tw.AppendFooter(table.Row{"", "", "resolved", fmt.Sprintf("%d/%d", resolved, len(keys))})

			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", manifest.GeneratedAtUtc)
			return nil
		},
	}
}
