package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydcare/carerank/internal/registry"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add registry entries for unregistered corpus directories",
	Long: `Scan the corpus for provider directories the registry does not know
about and add a bare entry for each, so their documents participate in
ingest and verification until real registry data arrives.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		added, err := registry.Sync(cfg.Paths.Registry, cfg.Paths.Corpus)
		if err != nil {
			return err
		}
		if added == 0 {
			fmt.Println("Registry already covers the corpus.")
			return nil
		}
		fmt.Printf("Added %d bare registry entries\n", added)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
