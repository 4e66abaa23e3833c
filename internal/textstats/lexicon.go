package textstats

import (
	"fmt"
	"os"
	"strings"

	"github.com/kljensen/snowball/english"
	"gopkg.in/yaml.v3"
)

// MaxPolarity bounds the absolute polarity of a lexicon entry.
const MaxPolarity = 5

// Lexicon maps word stems to an integer polarity in [-MaxPolarity, MaxPolarity].
type Lexicon struct {
	stems map[string]int
}

type lexiconFile struct {
	Words map[string]int `yaml:"words"`
}

var builtinPolarity = map[string]int{
	"abandon": -2, "abuse": -3, "afraid": -2, "amazing": 4, "anger": -3,
	"angry": -3, "anxious": -2, "appreciate": 2, "awesome": 4, "awful": -3,
	"bad": -3, "beautiful": 3, "benefit": 2, "best": 3, "better": 2,
	"brave": 2, "brilliant": 4, "broken": -1, "calm": 2, "care": 2,
	"celebrate": 3, "challenge": -1, "cheer": 2, "comfort": 2, "confident": 2,
	"conflict": -2, "courage": 2, "crisis": -3, "cruel": -3, "damage": -3,
	"danger": -2, "dead": -3, "delight": 3, "depressed": -2, "despair": -3,
	"destroy": -3, "difficult": -1, "disappoint": -2, "disaster": -2, "empower": 2,
	"encourage": 2, "enjoy": 2, "excellent": 3, "excited": 3, "fail": -2,
	"failure": -2, "fair": 2, "faith": 1, "fantastic": 4, "fear": -2,
	"fight": -1, "fine": 2, "free": 1, "friend": 1, "fun": 4,
	"generous": 2, "gift": 2, "glad": 3, "good": 3, "grateful": 3,
	"great": 3, "grief": -2, "grow": 1, "happy": 3, "harm": -2,
	"hate": -3, "heal": 2, "help": 2, "helpful": 2, "hope": 2,
	"hopeless": -2, "horrible": -3, "hurt": -2, "improve": 2, "injustice": -2,
	"inspire": 2, "isolate": -1, "joy": 3, "kind": 2, "lonely": -2,
	"lose": -3, "loss": -3, "love": 3, "lucky": 3, "miss": -2,
	"negative": -2, "neglect": -2, "nice": 3, "pain": -2, "peace": 2,
	"poor": -2, "positive": 2, "powerful": 2, "problem": -2, "proud": 2,
	"recover": 2, "resilient": 2, "respect": 2, "risk": -2, "sad": -2,
	"safe": 1, "scared": -2, "share": 1, "strong": 2, "struggle": -2,
	"success": 2, "suffer": -2, "support": 2, "terrible": -3, "thank": 2,
	"threat": -2, "trauma": -3, "trust": 1, "ugly": -3, "unfair": -2,
	"unhappy": -2, "violence": -3, "warm": 1, "weak": -2, "welcome": 2,
	"win": 4, "wonderful": 4, "worry": -3, "worse": -3, "worst": -3,
	"wrong": -2,
}

// DefaultLexicon returns the built-in lexicon.
func DefaultLexicon() *Lexicon {
	lex := &Lexicon{stems: make(map[string]int, len(builtinPolarity))}
	for word, p := range builtinPolarity {
		lex.Add(word, p)
	}
	return lex
}

// Add registers word, stemming it first. Polarity is clamped to the valid range.
func (l *Lexicon) Add(word string, polarity int) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	if polarity > MaxPolarity {
		polarity = MaxPolarity
	}
	if polarity < -MaxPolarity {
		polarity = -MaxPolarity
	}
	l.stems[english.Stem(word, false)] = polarity
}

func (l *Lexicon) Lookup(stem string) (int, bool) {
	p, ok := l.stems[stem]
	return p, ok
}

func (l *Lexicon) Len() int {
	return len(l.stems)
}

// LoadLexicon reads a YAML file of the form
//
//	words:
//	  thriving: 3
//	  displaced: -2
//
// and merges it over the built-in lexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}

	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon %s: %w", path, err)
	}

	lex := DefaultLexicon()
	for word, p := range file.Words {
		lex.Add(word, p)
	}
	return lex, nil
}
