package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/act-placemat/normalizer/internal/cleaner"
)

var (
	cleanOperations     []string
	cleanAggressiveness string
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Run the cleaning stages over an array of records",
	Args:  cobra.ExactArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().StringSliceVarP(&cleanOperations, "operations", "o", nil, "Operations to run in order (default from config)")
	cleanCmd.Flags().StringVarP(&cleanAggressiveness, "aggressiveness", "a", "", "conservative, moderate or aggressive (default from config)")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	list, ok := data.([]any)
	if !ok {
		return fmt.Errorf("%s must contain a JSON array", args[0])
	}
	items := make([]map[string]any, 0, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("item %d is not an object", i)
		}
		items = append(items, m)
	}

	opts := cleaner.Options{Operations: cleanOperations, Aggressiveness: cleanAggressiveness}
	if len(opts.Operations) == 0 {
		opts.Operations = appConfig.Cleaner.DefaultOperations
	}
	if opts.Aggressiveness == "" {
		opts.Aggressiveness = appConfig.Cleaner.DefaultAggressiveness
	}

	result, err := cleaner.New().Clean(cmd.Context(), items, opts)
	if err != nil {
		return err
	}

	if err := writeJSON(cmd, map[string]any{
		"report": result.Report,
		"data":   result.Items,
	}); err != nil {
		return err
	}

	s := result.Report.Summary
	summary(cmd, false, "%d -> %d records, quality %.1f -> %.1f", s.OriginalCount, s.FinalCount, s.QualityBefore, s.QualityAfter)
	return nil
}
