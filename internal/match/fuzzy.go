// Package match implements the approximate matching used to verify
// extracted values against literal PDF text. All functions are pure;
// verdicts must be reproducible bit for bit.
package match

import (
	"strconv"
	"strings"

	"github.com/agext/levenshtein"
)

// SimilarityThreshold is the acceptance bar for approximate string
// equality, on the normalized 0-1 edit-distance ratio.
const SimilarityThreshold = 0.85

// numericTolerance absorbs rounding differences between extracted
// numbers and printed ones.
const numericTolerance = 0.01

// Similarity returns the normalized edit-distance ratio between two
// strings (1 means equal).
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

// Tokenize splits line text on whitespace and strips leading/trailing
// punctuation from each token. Interior punctuation stays: "12,50" is
// one token with its decimal separator intact.
func Tokenize(line string) []string {
	line = strings.ReplaceAll(line, " ", " ")
	fields := strings.Fields(line)
	toks := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}<>\"'€$£%*")
		if f != "" {
			toks = append(toks, f)
		}
	}
	return toks
}

// ParseNumber reads a token as a number, accepting either decimal
// separator.
func ParseNumber(tok string) (float64, bool) {
	s := strings.TrimSpace(tok)
	s = strings.TrimLeft(s, "€$£")
	s = strings.TrimRight(s, "€$£")
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumbersEqual compares two values under the numeric tolerance.
func NumbersEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < numericTolerance
}

// TokenMatches reports whether value is present in the token, by
// approximate string similarity or by numeric equality after decimal
// separator normalization.
func TokenMatches(value, tok string) bool {
	if Similarity(value, tok) >= SimilarityThreshold {
		return true
	}
	v, okV := ParseNumber(value)
	t, okT := ParseNumber(tok)
	return okV && okT && NumbersEqual(v, t)
}
