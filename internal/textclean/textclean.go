// Package textclean holds the text-cleaning routines shared by the source
// transformers and the batch cleaner.
package textclean

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Clean drops control and format characters, applies NFC normalization,
// collapses whitespace and trims. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
	s = norm.NFC.String(s)
	return CollapseWhitespace(s)
}

// CollapseWhitespace replaces every whitespace run with one space and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SqueezeRuns shortens every run of at least min identical runes to keep runes.
func SqueezeRuns(s string, min, keep int) string {
	if min <= 1 || keep >= min || s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		n := j - i
		if n >= min {
			n = keep
		}
		for k := 0; k < n; k++ {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String()
}

const safePunctuation = `.,!?;:'"()-_`

// StripUnsafe removes every rune that is not a letter, mark, digit,
// whitespace or basic sentence punctuation.
func StripUnsafe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(safePunctuation, r) {
			return r
		}
		return -1
	}, s)
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// StripHTML extracts the readable body text and the page title from an HTML
// document. Non-content elements are dropped before extraction.
func StripHTML(html string) (text, title string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Clean(html), ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("script, style, nav, footer, header, aside, noscript").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return Clean(doc.Text()), Clean(title)
	}

	// Block elements are separated so their words do not run together.
	body.Find("p, div, li, br, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return Clean(body.Text()), Clean(title)
}
