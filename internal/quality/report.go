package quality

import (
	"fmt"

	"github.com/act-placemat/normalizer/internal/schema"
)

// Recommendation thresholds per dimension.
const (
	recommendCompleteness = 80.0
	recommendAccuracy     = 75.0
	recommendConsistency  = 80.0
	recommendOverall      = 70.0
)

// Grade maps an overall score to a letter.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Recommendations returns one suggestion for every dimension average below
// its threshold, plus one for a low overall score.
func Recommendations(m schema.QualityMetrics, overall float64) []string {
	out := []string{}
	if m.Completeness < recommendCompleteness {
		out = append(out, fmt.Sprintf("Completeness is %.1f: fill in missing required fields before ingestion", m.Completeness))
	}
	if m.Accuracy < recommendAccuracy {
		out = append(out, fmt.Sprintf("Accuracy is %.1f: review content for very short, repetitive or symbol-heavy text", m.Accuracy))
	}
	if m.Consistency < recommendConsistency {
		out = append(out, fmt.Sprintf("Consistency is %.1f: recompute stored word counts and check embeddings and timestamps", m.Consistency))
	}
	if overall < recommendOverall {
		out = append(out, fmt.Sprintf("Overall quality is %.1f: run the cleaner before transforming this data", overall))
	}
	return out
}

// Summary aggregates a batch of reports.
type Summary struct {
	Count        int                   `json:"count"`
	Passed       int                   `json:"passed"`
	PassRate     float64               `json:"pass_rate"`
	AverageScore float64               `json:"average_score"`
	Metrics      schema.QualityMetrics `json:"metrics"`
}

func Summarize(reports []Report) Summary {
	s := Summary{Count: len(reports)}
	if len(reports) == 0 {
		return s
	}

	for _, r := range reports {
		if r.Passed {
			s.Passed++
		}
		s.AverageScore += r.Score
		s.Metrics.Completeness += r.Metrics.Completeness
		s.Metrics.Accuracy += r.Metrics.Accuracy
		s.Metrics.Consistency += r.Metrics.Consistency
		s.Metrics.Validity += r.Metrics.Validity
	}

	n := float64(len(reports))
	s.PassRate = float64(s.Passed) / n * 100
	s.AverageScore /= n
	s.Metrics.Completeness /= n
	s.Metrics.Accuracy /= n
	s.Metrics.Consistency /= n
	s.Metrics.Validity /= n
	return s
}
