package picker

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// Algorithm selects how candidates are scored against the search term.
type Algorithm string

const (
	// AlgorithmSmart scores like an editor file finder: bonuses for the
	// first character, separators, camel case humps and adjacent runs.
	AlgorithmSmart Algorithm = "smart"
	// AlgorithmNormalized ignores case and diacritics and prefers tight,
	// short matches.
	AlgorithmNormalized Algorithm = "normalized"
)

// ParseAlgorithm maps a user supplied name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", AlgorithmSmart:
		return AlgorithmSmart, nil
	case AlgorithmNormalized:
		return AlgorithmNormalized, nil
	}
	return "", fmt.Errorf("unknown match algorithm %q (want %q or %q)", name, AlgorithmSmart, AlgorithmNormalized)
}

// Candidate is one entry offered to the picker. Index is its position in the
// caller's input and is the only thing reported back.
type Candidate struct {
	Index int
	Text  string
}

// MatchResult is a scored candidate. Positions are rune offsets into the
// candidate text, ascending.
type MatchResult struct {
	Index     int
	Score     int
	Positions []int
}

// Engine ranks a fixed candidate set. It holds a read-only view of the
// candidates for the lifetime of one pick.
type Engine struct {
	candidates []Candidate
	algorithm  Algorithm
}

// NewEngine builds an engine over texts. Unknown algorithms fall back to
// AlgorithmSmart.
func NewEngine(texts []string, algorithm Algorithm) *Engine {
	candidates := make([]Candidate, len(texts))
	for i, text := range texts {
		candidates[i] = Candidate{Index: i, Text: text}
	}
	if algorithm != AlgorithmNormalized {
		algorithm = AlgorithmSmart
	}
	return &Engine{candidates: candidates, algorithm: algorithm}
}

// Len reports the number of candidates.
func (e *Engine) Len() int {
	return len(e.candidates)
}

// Candidate returns the candidate at index i.
func (e *Engine) Candidate(i int) Candidate {
	return e.candidates[i]
}

// Algorithm reports the active scorer.
func (e *Engine) Algorithm() Algorithm {
	return e.algorithm
}

// candidateSource adapts the candidate slice to fuzzy.Source.
type candidateSource []Candidate

func (s candidateSource) String(i int) string { return s[i].Text }

func (s candidateSource) Len() int { return len(s) }

// Rank scores every candidate against term, drops non-matches and orders
// the rest best first. Ties keep the original candidate order.
func (e *Engine) Rank(term string) []MatchResult {
	if term == "" {
		ranked := make([]MatchResult, len(e.candidates))
		for i, c := range e.candidates {
			ranked[i] = MatchResult{Index: c.Index}
		}
		return ranked
	}
	var ranked []MatchResult
	switch e.algorithm {
	case AlgorithmNormalized:
		ranked = make([]MatchResult, 0, len(e.candidates))
		for _, c := range e.candidates {
			if score, positions, ok := scoreNormalized(c.Text, term); ok {
				ranked = append(ranked, MatchResult{Index: c.Index, Score: score, Positions: positions})
			}
		}
	default:
		matches := fuzzy.FindFromNoSort(term, candidateSource(e.candidates))
		ranked = make([]MatchResult, 0, len(matches))
		for _, m := range matches {
			ranked = append(ranked, MatchResult{
				Index:     m.Index,
				Score:     m.Score,
				Positions: runeOffsets(m.Str, m.MatchedIndexes),
			})
		}
	}
	sortRanked(ranked)
	return ranked
}

// Score evaluates a single text with the smart algorithm. ok is false when
// term is not a case-insensitive subsequence of text.
func Score(text, term string) (score int, positions []int, ok bool) {
	return scoreWith(AlgorithmSmart, text, term)
}

func scoreWith(algorithm Algorithm, text, term string) (int, []int, bool) {
	if term == "" {
		return 0, nil, true
	}
	if algorithm == AlgorithmNormalized {
		return scoreNormalized(text, term)
	}
	matches := fuzzy.Find(term, []string{text})
	if len(matches) == 0 {
		return 0, nil, false
	}
	return matches[0].Score, runeOffsets(text, matches[0].MatchedIndexes), true
}

func sortRanked(ranked []MatchResult) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})
}

// runeOffsets converts byte offsets reported by the matcher into rune
// offsets.
func runeOffsets(text string, byteOffsets []int) []int {
	if len(byteOffsets) == 0 {
		return nil
	}
	out := make([]int, 0, len(byteOffsets))
	next := 0
	runeIdx := 0
	for b := range text {
		if next >= len(byteOffsets) {
			break
		}
		if b == byteOffsets[next] {
			out = append(out, runeIdx)
			next++
		}
		runeIdx++
	}
	return out
}

func scoreNormalized(text, term string) (int, []int, bool) {
	unmatched := lfuzzy.RankMatchNormalizedFold(term, text)
	if unmatched < 0 {
		return 0, nil, false
	}
	positions := foldedPositions(text, term)
	if positions == nil {
		return 0, nil, false
	}
	adjacent := 0
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			adjacent++
		}
	}
	return 2*adjacent - unmatched, positions, true
}

// foldedPositions walks text left to right and records the first rune that
// matches each term rune after folding case and stripping marks.
func foldedPositions(text, term string) []int {
	want := make([]rune, 0, utf8.RuneCountInString(term))
	for _, r := range term {
		if f, ok := foldRune(r); ok {
			want = append(want, f)
		}
	}
	if len(want) == 0 {
		return []int{}
	}
	positions := make([]int, 0, len(want))
	idx := 0
	for _, r := range text {
		if len(positions) == len(want) {
			break
		}
		if f, ok := foldRune(r); ok && f == want[len(positions)] {
			positions = append(positions, idx)
		}
		idx++
	}
	if len(positions) != len(want) {
		return nil
	}
	return positions
}

// foldRune reduces r to its lower-case base letter. Combining marks report
// ok=false.
func foldRune(r rune) (rune, bool) {
	if unicode.Is(unicode.Mn, r) {
		return 0, false
	}
	base, _ := utf8.DecodeRuneInString(norm.NFD.String(string(r)))
	return unicode.ToLower(base), true
}
