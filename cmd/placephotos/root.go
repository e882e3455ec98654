package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "placephotos",
		Short:         "Resolve and cache open-licensed photos for the embedded place lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newFetchCommand(&configFlag))
	rootCmd.AddCommand(newAssignCommand(&configFlag))
	rootCmd.AddCommand(newStatusCommand(&configFlag))

	return rootCmd
}
