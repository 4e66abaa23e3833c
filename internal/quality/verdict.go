package quality

import (
	"errors"

	"github.com/act-placemat/normalizer/internal/schema"
)

// Verdict is the outcome of checking one raw record against a schema.
type Verdict struct {
	ID             string                `json:"id"`
	Valid          bool                  `json:"valid"`
	QualityScore   float64               `json:"quality_score"`
	QualityMetrics schema.QualityMetrics `json:"quality_metrics"`
	Issues         []string              `json:"issues"`
}

// Check decodes m into kind and scores it. Valid reflects schema validation
// only; Issues lists constraint violations followed by low dimensions.
func Check(m map[string]any, kind schema.Kind) Verdict {
	rec, err := schema.DecodeMap(m, kind)
	report := ScoreMap(m, string(kind))

	issues := []string{}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		issues = append(issues, verr.Messages()...)
	}
	issues = append(issues, report.Issues...)

	return Verdict{
		ID:             rec.RecordID(),
		Valid:          err == nil,
		QualityScore:   report.Score,
		QualityMetrics: report.Metrics,
		Issues:         issues,
	}
}
