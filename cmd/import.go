package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/registry"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import a provider registry from a spreadsheet",
	Long: `Read providers from an XLSX sheet and write them to the registry
file. Header names are matched tolerantly (RACS code, service name,
lat/lng, star ratings); provider ids are derived from RACS codes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")

		providers, err := registry.ImportXLSX(args[0], registry.ImportOptions{SheetName: sheet})
		if err != nil {
			return err
		}
		if err := registry.Validate(providers); err != nil {
			return err
		}
		if err := registry.Save(cfg.Paths.Registry, providers); err != nil {
			return err
		}

		zap.L().Info("registry imported",
			zap.String("source", args[0]),
			zap.Int("providers", len(providers)),
		)
		fmt.Printf("Imported %d providers into %s\n", len(providers), cfg.Paths.Registry)
		return nil
	},
}

func init() {
	importCmd.Flags().String("sheet", "", "worksheet name (default: first sheet)")
	rootCmd.AddCommand(importCmd)
}
