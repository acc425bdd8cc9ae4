package pdfdoc

import (
	"sort"
	"strings"

	"github.com/facturio/invoice-analyst/internal/match"
)

// Span is a located value: a page and a bounding box in PDF user
// space.
type Span struct {
	Page           int
	X0, Y0, X1, Y1 float64
}

// ArticleCandidates returns the indices of lines that plausibly hold
// the article identified by reference/designation: every line whose
// score clears the similarity threshold, ordered best first with ties
// broken by document position. When an invoice repeats a reference,
// the k-th occurrence of the article takes the k-th candidate, which
// degrades to document order because exact hits all score 1.
func (d *Document) ArticleCandidates(reference, designation string) []int {
	type scored struct {
		idx   int
		score float64
	}
	var cands []scored
	for i, l := range d.Lines {
		s := articleLineScore(l, reference, designation)
		if s >= match.SimilarityThreshold {
			cands = append(cands, scored{idx: i, score: s})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].idx < cands[j].idx
	})
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}

func articleLineScore(l Line, reference, designation string) float64 {
	best := 0.0
	if reference != "" {
		if strings.Contains(l.Text, reference) {
			return 1
		}
		for _, tok := range match.Tokenize(l.Text) {
			if s := match.Similarity(reference, tok); s > best {
				best = s
			}
		}
	}
	if designation != "" {
		if s := windowScore(l, designation); s > best {
			best = s
		}
	}
	return best
}

// FindValueSpan locates the first line containing the value and
// returns the minimal run of words covering it. Lines are scanned in
// reading order, so the result is deterministic.
func (d *Document) FindValueSpan(value string) (Span, bool) {
	val := normText(value)
	if val == "" {
		return Span{}, false
	}
	alt := swapDecimalSep(val)
	k := len(strings.Fields(val))
	if k == 0 {
		return Span{}, false
	}

	for _, l := range d.Lines {
		for i := 0; i+k <= len(l.Words); i++ {
			run := l.Words[i : i+k]
			cand := normText(joinWords(run))
			if cand == val || cand == alt ||
				match.Similarity(cand, val) >= match.SimilarityThreshold {
				return wordSpan(l.Page, run), true
			}
		}
	}
	return Span{}, false
}

func windowScore(l Line, value string) float64 {
	val := normText(value)
	k := len(strings.Fields(val))
	if k == 0 || k > len(l.Words) {
		return 0
	}
	best := 0.0
	for i := 0; i+k <= len(l.Words); i++ {
		cand := normText(joinWords(l.Words[i : i+k]))
		if s := match.Similarity(cand, val); s > best {
			best = s
		}
	}
	return best
}

func wordSpan(page int, words []Word) Span {
	sp := Span{Page: page, X0: words[0].X0, Y0: words[0].Y0, X1: words[0].X1, Y1: words[0].Y1}
	for _, w := range words[1:] {
		sp.X0 = min(sp.X0, w.X0)
		sp.Y0 = min(sp.Y0, w.Y0)
		sp.X1 = max(sp.X1, w.X1)
		sp.Y1 = max(sp.Y1, w.Y1)
	}
	return sp
}

func joinWords(ws []Word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

func normText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func swapDecimalSep(s string) string {
	if strings.Contains(s, ".") {
		return strings.ReplaceAll(s, ".", ",")
	}
	return strings.ReplaceAll(s, ",", ".")
}
