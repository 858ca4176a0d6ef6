// Package match implements the order-insensitive question similarity used by
// the learned-answer cache. Questions are reduced to sorted token strings and
// compared with a Levenshtein-based ratio scaled 0-100, so "book a haircut at
// 6 pm" and "Can I get a haircut at 6pm?" score as near-duplicates while
// unrelated questions stay well below the match threshold.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// stopwords are filler words stripped before comparison. Caller phrasing
// ("can I get...", "what is your...") varies far more than the content words.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"i": {}, "you": {}, "your": {}, "we": {}, "our": {}, "me": {}, "my": {}, "it": {},
	"is": {}, "are": {}, "am": {}, "do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "would": {}, "will": {}, "get": {},
	"at": {}, "in": {}, "on": {}, "of": {}, "to": {}, "for": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "how": {},
	"please": {},
}

// Tokenize lowercases s and splits it into alphanumeric runs. Letter and
// digit runs are split from each other so "6pm" and "6 pm" tokenize alike.
func Tokenize(s string) []string {
	var tokens []string
	var current strings.Builder
	var currentDigit bool

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r):
			if currentDigit {
				flush()
			}
			currentDigit = false
			current.WriteRune(r)
		case unicode.IsDigit(r):
			if !currentDigit {
				flush()
			}
			currentDigit = true
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Normalize returns the canonical token-sorted form of a question: tokens
// lowercased, stopwords removed, sorted, and rejoined with single spaces.
// If every token is a stopword the unfiltered tokens are kept, so a question
// never normalizes to the empty string unless it had no tokens at all.
func Normalize(s string) string {
	tokens := Tokenize(s)

	filtered := tokens[:0:0]
	for _, tok := range tokens {
		if _, skip := stopwords[tok]; !skip {
			filtered = append(filtered, tok)
		}
	}
	if len(filtered) == 0 {
		filtered = tokens
	}

	sort.Strings(filtered)
	return strings.Join(filtered, " ")
}

// Ratio returns a 0-100 similarity between two strings based on their
// Levenshtein distance, normalized by the combined length. Identical strings
// score 100; the score decays as more edits are needed.
func Ratio(a, b string) int {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	dist := levenshtein.ComputeDistance(a, b)
	total := len([]rune(a)) + len([]rune(b))
	score := 100 - (200*dist+total)/(2*total)
	if score < 0 {
		return 0
	}
	return score
}

// TokenSortRatio normalizes both questions and returns their Ratio. The
// result is deterministic for any given pair of inputs.
func TokenSortRatio(a, b string) int {
	return Ratio(Normalize(a), Normalize(b))
}
