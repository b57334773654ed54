// Package tokenizer implements the language-agnostic tokenize(text)
// contract (§6): Unicode word-boundary segmentation, with no vocabulary
// list, stopword list, or per-language special-casing.
package tokenizer

import (
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"

	"github.com/jackzampolin/narrative/internal/layout"
)

// Tokenizer is an alias for layout.Tokenizer so tokenizers in this package
// satisfy the pipeline's contract with no wrapper type.
type Tokenizer = layout.Tokenizer

// WordTokenizer segments text into words using Unicode Text Segmentation
// (UAX #29) word-boundary rules. It is the default Tokenizer: determinstic,
// independent of any language's specific script or vocabulary, and stable
// across runs for the same input.
type WordTokenizer struct {
	// SkipSpacesAndPunctuation drops boundary segments that are pure
	// whitespace or punctuation, keeping only segments with at least one
	// letter or digit. The pipeline always sets this: separator tokens
	// carry no narrative content and would otherwise dilute every
	// TokenRange with noise (§4.9).
	SkipSpacesAndPunctuation bool
}

// NewWordTokenizer returns the pipeline's default tokenizer.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{SkipSpacesAndPunctuation: true}
}

// Tokenize implements Tokenizer.
func (t *WordTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	seg := words.NewSegmenter([]byte(text))
	for seg.Next() {
		tok := seg.Value()
		if t.SkipSpacesAndPunctuation && !hasWordChar(tok) {
			continue
		}
		out = append(out, string(tok))
	}
	return out
}

func hasWordChar(b []byte) bool {
	for _, r := range string(b) {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
