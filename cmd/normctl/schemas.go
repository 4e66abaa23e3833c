package main

import (
	"github.com/spf13/cobra"

	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/transform"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Describe the canonical schemas, transformers and quality dimensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeJSON(cmd, map[string]any{
			"schemas":            schema.Describe(),
			"transformers":       transform.NewRegistry().Names(),
			"quality_dimensions": quality.Dimensions,
		})
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
