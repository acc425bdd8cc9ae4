package match

import (
	"strings"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// Status is the per-article validation outcome.
type Status string

const (
	StatusCorrect Status = "correct"
	StatusError   Status = "error"
)

// Verdict reports which of an article's fields could not be verified
// in the source line. MissingFields keeps canonical column order.
type Verdict struct {
	Status        Status
	MissingFields []string
}

// Validate checks every populated line-visible field of the article
// against the literal PDF line text. Each source token can vouch for
// at most one field: a matched token is consumed, so "quantity 2,
// packaging 2" needs two 2s on the line.
//
// Pure function of (article, lineText): the pipeline calls it while
// choosing highlight colors and again when attaching verdicts to the
// response, and both calls must agree.
func Validate(a entity.Article, lineText string) Verdict {
	tokens := Tokenize(lineText)
	var missing []string

	for _, f := range a.LineFields() {
		if !consume(&tokens, f.Text) {
			missing = append(missing, f.Key)
		}
	}

	if len(missing) > 0 {
		return Verdict{Status: StatusError, MissingFields: missing}
	}
	return Verdict{Status: StatusCorrect}
}

// consume locates value in the remaining tokens and removes the tokens
// that vouch for it. Multi-word values match a run of consecutive
// tokens and consume the whole run.
func consume(tokens *[]string, value string) bool {
	ts := *tokens
	width := len(strings.Fields(value))
	switch {
	case width == 0:
		return true
	case width == 1:
		for i, tok := range ts {
			if TokenMatches(value, tok) {
				*tokens = append(ts[:i], ts[i+1:]...)
				return true
			}
		}
	default:
		for i := 0; i+width <= len(ts); i++ {
			if Similarity(strings.Join(ts[i:i+width], " "), value) >= SimilarityThreshold {
				*tokens = append(ts[:i], ts[i+width:]...)
				return true
			}
		}
	}
	return false
}
