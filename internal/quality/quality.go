// Package quality scores canonical and raw records on four dimensions:
// completeness, accuracy, consistency and validity.
package quality

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/textstats"
)

// PassThreshold is the minimum overall score for a record to pass.
// IssueThreshold is the dimension score below which an issue is reported.
const (
	PassThreshold  = 70.0
	IssueThreshold = 70.0
)

// EmbeddingDimensions is the only accepted embedding length.
const EmbeddingDimensions = 1536

// Penalty weights.
const (
	penaltyShortContent      = 30
	penaltyLowDiversity      = 20
	penaltyNoSentences       = 25
	penaltySpecialChars      = 15
	penaltyWordCountMismatch = 20
	penaltyBadEmbedding      = 25
	penaltyTimeOrder         = 15
	penaltyMalformedID       = 20
	penaltyBadTimestamp      = 15
	penaltyNotEncodable      = 25
	penaltyBadCharacters     = 20
)

const (
	minContentLength   = 10
	minLexicalRatio    = 0.3
	minSentenceLength  = 5
	maxSpecialRatio    = 0.3
	wordCountTolerance = 0.1
)

const (
	DimensionCompleteness = "completeness"
	DimensionAccuracy     = "accuracy"
	DimensionConsistency  = "consistency"
	DimensionValidity     = "validity"
)

// Dimensions lists the quality dimensions in report order.
var Dimensions = []string{DimensionCompleteness, DimensionAccuracy, DimensionConsistency, DimensionValidity}

type Report struct {
	Passed  bool                  `json:"passed"`
	Score   float64               `json:"score"`
	Metrics schema.QualityMetrics `json:"metrics"`
	Issues  []string              `json:"issues"`
}

func Score(s Subject) Report {
	m := schema.QualityMetrics{
		Completeness: Completeness(s),
		Accuracy:     Accuracy(s),
		Consistency:  Consistency(s),
		Validity:     Validity(s),
	}
	overall := (m.Completeness + m.Accuracy + m.Consistency + m.Validity) / 4

	issues := []string{}
	for _, d := range []struct {
		name  string
		score float64
	}{
		{DimensionCompleteness, m.Completeness},
		{DimensionAccuracy, m.Accuracy},
		{DimensionConsistency, m.Consistency},
		{DimensionValidity, m.Validity},
	} {
		if d.score < IssueThreshold {
			issues = append(issues, d.name)
		}
	}

	return Report{
		Passed:  overall >= PassThreshold,
		Score:   overall,
		Metrics: m,
		Issues:  issues,
	}
}

func ScoreRecord(rec schema.Record) Report {
	return Score(FromRecord(rec))
}

func ScoreMap(m map[string]any, hint string) Report {
	return Score(FromMap(m, hint))
}

// Completeness is the share of required fields that are present.
func Completeness(s Subject) float64 {
	fields := requiredFields[s.Kind]
	if len(fields) == 0 {
		return 100
	}
	present := 0
	for _, f := range fields {
		if strings.TrimSpace(s.Required[f]) != "" {
			present++
		}
	}
	return float64(present) / float64(len(fields)) * 100
}

func Accuracy(s Subject) float64 {
	score := 100.0
	content := s.Content

	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLength {
		score -= penaltyShortContent
	}

	words := textstats.Words(strings.ToLower(content))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < minLexicalRatio {
			score -= penaltyLowDiversity
		}
	}

	hasSentence := false
	for _, sentence := range textstats.Sentences(content) {
		if utf8.RuneCountInString(sentence) > minSentenceLength {
			hasSentence = true
			break
		}
	}
	if !hasSentence {
		score -= penaltyNoSentences
	}

	if specialRatio(content) > maxSpecialRatio {
		score -= penaltySpecialChars
	}
	return floor(score)
}

func Consistency(s Subject) float64 {
	score := 100.0

	if s.WordCount != nil {
		fresh := textstats.CountWords(s.Content)
		stored := *s.WordCount
		switch {
		case fresh == 0:
			if stored != 0 {
				score -= penaltyWordCountMismatch
			}
		case math.Abs(float64(stored-fresh))/float64(fresh) > wordCountTolerance:
			score -= penaltyWordCountMismatch
		}
	}

	if s.HasEmbedding && s.EmbeddingDims != EmbeddingDimensions {
		score -= penaltyBadEmbedding
	}

	if s.CreatedAt != "" && s.UpdatedAt != "" {
		created, errC := schema.ParseTime(s.CreatedAt)
		updated, errU := schema.ParseTime(s.UpdatedAt)
		if errC == nil && errU == nil && updated.Before(created) {
			score -= penaltyTimeOrder
		}
	}
	return floor(score)
}

func Validity(s Subject) float64 {
	score := 100.0

	if !schema.IsUUID(s.ID) {
		score -= penaltyMalformedID
	}
	for _, ts := range []string{s.CreatedAt, s.UpdatedAt} {
		if ts == "" {
			continue
		}
		if _, err := schema.ParseTime(ts); err != nil {
			score -= penaltyBadTimestamp
		}
	}
	// Percent-encoding is defined over UTF-8, so invalid sequences cannot
	// round-trip.
	if !utf8.ValidString(s.Content) {
		score -= penaltyNotEncodable
	}
	if strings.ContainsRune(s.Content, 0) || strings.ContainsRune(s.Content, utf8.RuneError) {
		score -= penaltyBadCharacters
	}
	return floor(score)
}

// specialRatio is the share of runes that are neither letters, digits, marks
// nor whitespace.
func specialRatio(content string) float64 {
	total, special := 0, 0
	for _, r := range content {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(special) / float64(total)
}

func floor(score float64) float64 {
	return math.Max(0, score)
}
