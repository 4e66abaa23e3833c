package main

import (
	"github.com/spf13/cobra"

	"github.com/act-placemat/normalizer/internal/pipeline"
	"github.com/act-placemat/normalizer/internal/transform"
)

var (
	sourceType   string
	targetSchema string
	maxChunkSize int
)

var transformCmd = &cobra.Command{
	Use:   "transform [file]",
	Short: "Transform raw records into canonical records",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransform,
}

func init() {
	transformCmd.Flags().StringVarP(&sourceType, "source", "s", "", "Source transformer (default from config)")
	transformCmd.Flags().StringVarP(&targetSchema, "target", "t", "", "Target schema (default from config)")
	transformCmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", 0, "Chunk size for file:text (default from config)")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	source, target, chunk := sourceType, targetSchema, maxChunkSize
	if source == "" {
		source = appConfig.Pipeline.DefaultSourceType
	}
	if target == "" {
		target = appConfig.Pipeline.DefaultTargetSchema
	}
	if chunk <= 0 {
		chunk = appConfig.Pipeline.MaxChunkSize
	}

	executor := pipeline.NewExecutor(transform.NewRegistry(transform.WithMaxChunkSize(chunk)))
	cfg := executor.Resolve(source, target)
	result, err := executor.ExecuteBatch(cmd.Context(), cfg, pipeline.Items(data))
	if err != nil {
		return err
	}

	if err := writeJSON(cmd, map[string]any{
		"source_type":   cfg.Source,
		"target_schema": cfg.Target,
		"input_count":   result.InputCount,
		"output_count":  len(result.Records),
		"errors":        result.Errors,
		"data":          result.Records,
		"metrics":       executor.Metrics().Report(),
	}); err != nil {
		return err
	}

	summary(cmd, len(result.Errors) > 0, "%d input, %d accepted, %d errors", result.InputCount, len(result.Records), len(result.Errors))
	return nil
}
