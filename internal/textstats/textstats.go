// Package textstats computes the text metrics attached to canonical records:
// word counts, reading time, a readability-based complexity score and a
// lexicon sentiment score. Every function is pure and deterministic.
package textstats

import (
	"math"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

var (
	wordPattern      = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	sentenceSplitter = regexp.MustCompile(`[.!?]+`)
	vowelRun         = regexp.MustCompile(`[aeiouy]+`)
)

// Words returns the word tokens of text in order.
func Words(text string) []string {
	if text == "" {
		return nil
	}
	return wordPattern.FindAllString(text, -1)
}

// Sentences splits text on terminal punctuation and drops blank segments.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplitter.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func CountWords(text string) int {
	return len(Words(text))
}

// ReadingTime is the estimated reading time in whole minutes, rounded up.
func ReadingTime(text string) int {
	return int(math.Ceil(float64(CountWords(text)) / WordsPerMinute))
}

// ComplexityScore inverts the Flesch Reading Ease score so that higher means
// harder to read. The result is clamped to [0, 100].
func ComplexityScore(text string) float64 {
	words := Words(text)
	sentences := Sentences(text)
	if len(words) == 0 || len(sentences) == 0 {
		return 0
	}

	wordsPerSentence := float64(len(words)) / float64(len(sentences))
	syllablesPerWord := AvgSyllables(words)

	flesch := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	return clamp(100-flesch, 0, 100)
}

// Syllables estimates the syllables in word as its number of vowel runs,
// never less than one.
func Syllables(word string) int {
	n := len(vowelRun.FindAllStringIndex(strings.ToLower(word), -1))
	if n < 1 {
		return 1
	}
	return n
}

func AvgSyllables(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += Syllables(w)
	}
	return float64(total) / float64(len(words))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
