package picker

import (
	"reflect"
	"testing"
)

func rankedIndices(results []MatchResult) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Index
	}
	return out
}

func TestRankEmptyTermKeepsOrder(t *testing.T) {
	for _, algo := range []Algorithm{AlgorithmSmart, AlgorithmNormalized} {
		t.Run(string(algo), func(t *testing.T) {
			e := NewEngine([]string{"c", "a", "b"}, algo)
			got := e.Rank("")
			if want := []int{0, 1, 2}; !reflect.DeepEqual(rankedIndices(got), want) {
				t.Fatalf("expected %v, got %v", want, rankedIndices(got))
			}
			for _, r := range got {
				if r.Score != 0 || len(r.Positions) != 0 {
					t.Fatalf("expected baseline result, got %+v", r)
				}
			}
		})
	}
}

func TestRankFiltersNonSubsequences(t *testing.T) {
	for _, algo := range []Algorithm{AlgorithmSmart, AlgorithmNormalized} {
		t.Run(string(algo), func(t *testing.T) {
			e := NewEngine([]string{"apple.md", "banana.md", "grape.md"}, algo)
			got := rankedIndices(e.Rank("ap"))
			if len(got) == 0 || got[0] != 0 {
				t.Fatalf("expected apple.md first, got %v", got)
			}
			for _, idx := range got {
				if idx == 1 {
					t.Fatalf("banana.md has no p and must not match, got %v", got)
				}
			}
		})
	}
}

func TestRankIsCaseInsensitive(t *testing.T) {
	e := NewEngine([]string{"README.md", "notes.txt"}, AlgorithmSmart)
	got := rankedIndices(e.Rank("readme"))
	if !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("expected [0], got %v", got)
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	for _, algo := range []Algorithm{AlgorithmSmart, AlgorithmNormalized} {
		t.Run(string(algo), func(t *testing.T) {
			e := NewEngine([]string{"xab", "xab", "xab"}, algo)
			got := rankedIndices(e.Rank("ab"))
			if want := []int{0, 1, 2}; !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestRankDeterministic(t *testing.T) {
	texts := []string{"docker compose", "git rebase", "go test", "grep -r", "kubectl get pods"}
	e := NewEngine(texts, AlgorithmSmart)
	first := e.Rank("g")
	for i := 0; i < 5; i++ {
		if again := e.Rank("g"); !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking changed between runs: %v vs %v", first, again)
		}
	}
}

func TestRankSortedByScore(t *testing.T) {
	e := NewEngine([]string{"xxabcxx", "a_x_b_x_c", "abc"}, AlgorithmSmart)
	got := e.Rank("abc")
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %+v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Fatalf("ranking not descending at %d: %+v", i, got)
		}
	}
	if got[len(got)-1].Index != 0 {
		t.Fatalf("expected buried match last, got %+v", got)
	}
}

func TestScorePositionsAreRuneOffsets(t *testing.T) {
	_, positions, ok := Score("héllo wörld", "lw")
	if !ok {
		t.Fatalf("expected match")
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %v", positions)
	}
	runes := []rune("héllo wörld")
	if runes[positions[0]] != 'l' || runes[positions[1]] != 'w' {
		t.Fatalf("positions %v do not point at l and w", positions)
	}
}

func TestScoreNoMatch(t *testing.T) {
	if _, _, ok := Score("banana.md", "ap"); ok {
		t.Fatalf("expected no match")
	}
	if score, positions, ok := Score("anything", ""); !ok || score != 0 || positions != nil {
		t.Fatalf("expected empty term to match with baseline score")
	}
}

func TestNormalizedIgnoresDiacritics(t *testing.T) {
	e := NewEngine([]string{"café crème", "tea"}, AlgorithmNormalized)
	got := e.Rank("cafe")
	if len(got) != 1 || got[0].Index != 0 {
		t.Fatalf("expected café to match, got %+v", got)
	}
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(got[0].Positions, want) {
		t.Fatalf("expected positions %v, got %v", want, got[0].Positions)
	}
}

func TestNormalizedPrefersTightMatches(t *testing.T) {
	e := NewEngine([]string{"a-very-long-b-name", "ab"}, AlgorithmNormalized)
	got := rankedIndices(e.Rank("ab"))
	if !reflect.DeepEqual(got, []int{1, 0}) {
		t.Fatalf("expected tight match first, got %v", got)
	}
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"":            AlgorithmSmart,
		"smart":       AlgorithmSmart,
		" Normalized": AlgorithmNormalized,
	}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", in, want, got)
		}
	}
	if _, err := ParseAlgorithm("regex"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}
