package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern extracts lowercase alphanumeric runs; anything outside
// ASCII letters and digits acts as a separator
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenizer normalizes raw record text into matchable tokens: lowercase,
// accents folded to their ASCII base characters, split on everything
// that is not alphanumeric. "Cyber-shot DSC-W310" becomes
// ["cyber", "shot", "dsc", "w310"].
type Tokenizer struct{}

// NewTokenizer creates a tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits raw text into normalized tokens. Safe for concurrent
// use; the fold transformer carries state and is built per call.
func (t *Tokenizer) Tokenize(raw string) []string {
	s := strings.ToLower(raw)

	// NFKD decomposition followed by removal of combining marks turns
	// accented characters into their ASCII base ("é" -> "e"). Characters
	// with no ASCII decomposition are dropped by the token pattern.
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	return tokenPattern.FindAllString(s, -1)
}
