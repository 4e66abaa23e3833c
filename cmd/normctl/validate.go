package main

import (
	"github.com/spf13/cobra"

	"github.com/act-placemat/normalizer/internal/pipeline"
	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/internal/schema"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate raw records against a canonical schema and score them",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "document", "Schema to validate against")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	kind := schema.ParseKind(validateSchema)
	items := pipeline.Items(data)
	verdicts := make([]quality.Verdict, len(items))
	reports := make([]quality.Report, len(items))
	valid := 0

	for i, item := range items {
		m, _ := item.(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		verdicts[i] = quality.Check(m, kind)
		reports[i] = quality.Report{Passed: verdicts[i].Valid, Score: verdicts[i].QualityScore, Metrics: verdicts[i].QualityMetrics}
		if verdicts[i].Valid {
			valid++
		}
	}

	agg := quality.Summarize(reports)
	if err := writeJSON(cmd, map[string]any{
		"schema":        kind,
		"results":       verdicts,
		"valid":         valid,
		"pass_rate":     agg.PassRate,
		"average_score": agg.AverageScore,
		"grade":         quality.Grade(agg.AverageScore),
	}); err != nil {
		return err
	}

	summary(cmd, valid < len(items), "%d of %d valid, average score %.1f", valid, len(items), agg.AverageScore)
	return nil
}
