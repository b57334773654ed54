package tokenizer

import (
	"reflect"
	"testing"
)

func TestWordTokenizerSplitsOnWordBoundaries(t *testing.T) {
	tok := NewWordTokenizer()
	got := tok.Tokenize("Hello, world! 123")
	want := []string{"Hello", "world", "123"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestWordTokenizerEmptyString(t *testing.T) {
	tok := NewWordTokenizer()
	if got := tok.Tokenize(""); got != nil {
		t.Errorf("Tokenize(\"\") = %v, want nil", got)
	}
}

func TestWordTokenizerKeepsPunctuationWhenNotSkipping(t *testing.T) {
	tok := &WordTokenizer{SkipSpacesAndPunctuation: false}
	got := tok.Tokenize("Hi!")
	// Without skipping, whitespace/punctuation boundary segments survive
	// alongside word segments.
	if len(got) < 2 {
		t.Errorf("expected punctuation segments to be kept, got %v", got)
	}
	foundWord := false
	for _, g := range got {
		if g == "Hi" {
			foundWord = true
		}
	}
	if !foundWord {
		t.Errorf("expected %q among segments, got %v", "Hi", got)
	}
}

func TestWordTokenizerHyphenatedWord(t *testing.T) {
	tok := NewWordTokenizer()
	got := tok.Tokenize("state-of-the-art")
	if len(got) == 0 {
		t.Fatal("expected at least one token from a hyphenated word")
	}
	for _, g := range got {
		if g == "-" {
			t.Errorf("a bare hyphen should never survive as its own token, got %v", got)
		}
	}
}

func TestIsWordRune(t *testing.T) {
	cases := []struct {
		r    rune
		want bool
	}{
		{'a', true},
		{'Z', true},
		{'5', true},
		{' ', false},
		{'.', false},
		{'-', false},
	}
	for _, c := range cases {
		if got := isWordRune(c.r); got != c.want {
			t.Errorf("isWordRune(%q) = %v, want %v", c.r, got, c.want)
		}
	}
}
