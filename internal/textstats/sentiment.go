package textstats

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball/english"
)

// Tokenizer splits text into raw tokens for the lexicon scorer.
type Tokenizer func(text string) ([]string, error)

// Analyzer scores sentiment with a stemmed polarity lexicon and falls back to
// keyword counting when tokenization fails.
type Analyzer struct {
	lexicon  *Lexicon
	tokenize Tokenizer
}

var defaultAnalyzer = NewAnalyzer(DefaultLexicon())

func NewAnalyzer(lex *Lexicon) *Analyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Analyzer{lexicon: lex, tokenize: proseTokenize}
}

// WithTokenizer returns a copy of the analyzer using tok.
func (a *Analyzer) WithTokenizer(tok Tokenizer) *Analyzer {
	return &Analyzer{lexicon: a.lexicon, tokenize: tok}
}

// SetDefault replaces the analyzer behind the package-level SentimentScore.
// Intended for process start-up, before any concurrent use.
func SetDefault(a *Analyzer) {
	if a != nil {
		defaultAnalyzer = a
	}
}

// SentimentScore returns a polarity in [-1, 1] using the default analyzer.
func SentimentScore(text string) float64 {
	return defaultAnalyzer.Score(text)
}

func (a *Analyzer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	score, err := a.lexiconScore(text)
	if err != nil {
		return keywordScore(text)
	}
	return score
}

func (a *Analyzer) lexiconScore(text string) (float64, error) {
	tokens, err := a.tokenize(text)
	if err != nil {
		return 0, fmt.Errorf("failed to tokenize: %w", err)
	}

	sum, matched := 0, 0
	for _, tok := range tokens {
		word := strings.ToLower(strings.TrimFunc(tok, func(r rune) bool { return !unicode.IsLetter(r) }))
		if word == "" {
			continue
		}
		if polarity, ok := a.lexicon.Lookup(english.Stem(word, false)); ok {
			sum += polarity
			matched++
		}
	}
	if matched == 0 {
		return 0, nil
	}
	return clamp(float64(sum)/float64(MaxPolarity*matched), -1, 1), nil
}

func proseTokenize(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}
	tokens := doc.Tokens()
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out, nil
}

var (
	positiveKeywords = map[string]struct{}{
		"good": {}, "great": {}, "excellent": {}, "amazing": {}, "wonderful": {},
		"positive": {}, "happy": {}, "love": {}, "success": {}, "strong": {},
		"hope": {}, "inspiring": {}, "proud": {}, "grateful": {}, "joy": {},
	}
	negativeKeywords = map[string]struct{}{
		"bad": {}, "terrible": {}, "awful": {}, "horrible": {}, "negative": {},
		"sad": {}, "hate": {}, "fail": {}, "failure": {}, "weak": {},
		"angry": {}, "pain": {}, "poor": {}, "struggle": {}, "fear": {},
	}
)

// keywordScore is (positive - negative) / (positive + negative) over a fixed
// keyword list, or 0 when neither occurs.
func keywordScore(text string) float64 {
	pos, neg := 0, 0
	for _, w := range Words(strings.ToLower(text)) {
		if _, ok := positiveKeywords[w]; ok {
			pos++
		}
		if _, ok := negativeKeywords[w]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
