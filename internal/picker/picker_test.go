package picker_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/atomicstack/snipx/internal/picker"
	"github.com/atomicstack/snipx/internal/testutil"
)

func runPick(t *testing.T, candidates []string, keys string, opts ...picker.Option) ([]int, *testutil.Terminal) {
	t.Helper()
	term := testutil.NewTerminal(40, 10, keys)
	got, err := picker.Pick(term, candidates, opts...)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if term.Enters() != term.Exits() {
		t.Fatalf("expected paired enter/exit, got %d enters %d exits", term.Enters(), term.Exits())
	}
	if term.Entered() || !term.CursorVisible() {
		t.Fatalf("expected terminal released with cursor visible")
	}
	return got, term
}

func TestPickScenarios(t *testing.T) {
	files := []string{"apple.md", "banana.md", "grape.md"}
	cases := []struct {
		name       string
		candidates []string
		keys       string
		opts       []picker.Option
		want       []int
	}{
		{"type and commit", files, "ap\r", nil, []int{0}},
		{"down at lower bound", []string{"a", "b", "c"}, "\x1b[B\r", nil, []int{0}},
		{"up selects next best", []string{"a", "b", "c"}, "\x1b[A\r", nil, []int{1}},
		{"up clamps at worst", []string{"a", "b", "c"}, "\x1b[A\x1b[A\x1b[A\x1b[A\r", nil, []int{2}},
		{"ctrl+p moves up", []string{"a", "b", "c"}, "\x10\r", nil, []int{1}},
		{"escape cancels", files, "\x1b", nil, []int{}},
		{"ctrl+c cancels", files, "ap\x03", nil, []int{}},
		{"commit with no matches", files, "zzz\r", nil, []int{}},
		{"eof cancels", files, "ap", nil, []int{}},
		{"backspace widens", files, "bx\x7f\r", nil, []int{1}},
		{"garbage is skipped", files, "\xffgr\r", nil, []int{2}},
		{"initial term", files, "\r", []picker.Option{picker.WithInitialTerm("gr")}, []int{2}},
		{"normalized algorithm", []string{"tea", "café"}, "cafe\r", []picker.Option{picker.WithAlgorithm(picker.AlgorithmNormalized)}, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, term := runPick(t, tc.candidates, tc.keys, tc.opts...)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if term.Enters() != 1 {
				t.Fatalf("expected a single session, got %d", term.Enters())
			}
		})
	}
}

func TestPickArrowSplitAcrossReads(t *testing.T) {
	input := iotest.OneByteReader(strings.NewReader("\x1b[A\r"))
	term := testutil.NewTerminalReader(40, 10, input)
	got, err := picker.Pick(term, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestPickEmptyCandidatesSkipsTerminal(t *testing.T) {
	term := testutil.NewTerminal(40, 10, "\r")
	got, err := picker.Pick(term, nil)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if term.Enters() != 0 || term.Flushes() != 0 {
		t.Fatalf("expected terminal untouched, got %d enters %d flushes", term.Enters(), term.Flushes())
	}
}

func TestPickSetupErrorBeforeRendering(t *testing.T) {
	term := testutil.NewTerminal(40, 10, "\r")
	term.FailEnter(errors.New("not a tty"))
	_, err := picker.Pick(term, []string{"a"})
	var setupErr *picker.TerminalSetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("expected TerminalSetupError, got %v", err)
	}
	if term.Flushes() != 0 || term.Exits() != 0 {
		t.Fatalf("expected nothing drawn or released, got %d flushes %d exits", term.Flushes(), term.Exits())
	}
}

func TestPickRenderErrorReleasesTerminal(t *testing.T) {
	term := testutil.NewTerminal(40, 10, "abc\r")
	term.FailWritesAfter(3)
	got, err := picker.Pick(term, []string{"a", "b"})
	var renderErr *picker.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v (result %v)", err, got)
	}
	if got != nil {
		t.Fatalf("expected no result on error, got %v", got)
	}
	if term.Exits() != 1 || term.Entered() {
		t.Fatalf("expected terminal released once, got %d exits", term.Exits())
	}
}

// brokenGeometry panics on the first size query after Enter.
type brokenGeometry struct {
	*testutil.Terminal
}

func (brokenGeometry) Geometry() (picker.Geometry, error) {
	panic("geometry unavailable")
}

func TestPickPanicReleasesTerminal(t *testing.T) {
	term := testutil.NewTerminal(40, 10, "a\r")
	func() {
		defer func() {
			if r := recover(); r != "geometry unavailable" {
				t.Fatalf("expected the panic to propagate, got %v", r)
			}
		}()
		picker.Pick(brokenGeometry{term}, []string{"a", "b"})
		t.Fatalf("expected pick to panic")
	}()
	if term.Enters() != 1 || term.Exits() != 1 {
		t.Fatalf("expected one enter and one exit, got %d and %d", term.Enters(), term.Exits())
	}
	if term.Entered() || !term.CursorVisible() {
		t.Fatalf("expected terminal released with cursor visible")
	}
}

func TestPickDeterministic(t *testing.T) {
	candidates := []string{"git push", "git pull", "go test", "grep", "gpg --list-keys"}
	first, _ := runPick(t, candidates, "gp\x1b[A\r")
	for i := 0; i < 3; i++ {
		again, _ := runPick(t, candidates, "gp\x1b[A\r")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d returned %v, first run %v", i, again, first)
		}
	}
}

func TestPickCursorStaysInVisibleWindow(t *testing.T) {
	candidates := make([]string, 20)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("item%02d", i)
	}
	term := testutil.NewTerminal(40, 5, strings.Repeat("\x1b[A", 10)+"\r")
	got, err := picker.Pick(term, candidates)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("expected the top visible entry [3], got %v", got)
	}
	if row := term.Row(3); row != "▌ item00" {
		t.Fatalf("expected best match kept above the prompt, got %q", row)
	}
	if row := term.Row(0); !strings.Contains(row, "item03") {
		t.Fatalf("expected item03 on the top row, got %q", row)
	}
	if prompt := term.Row(4); !strings.HasSuffix(prompt, "20/20") {
		t.Fatalf("expected counter 20/20, got %q", prompt)
	}
}

func TestPickShowsPromptAndCounter(t *testing.T) {
	_, term := runPick(t, []string{"apple.md", "banana.md", "grape.md"}, "ap")
	prompt := term.Row(9)
	if !strings.HasPrefix(prompt, "> ap") {
		t.Fatalf("expected prompt with term, got %q", prompt)
	}
	if !strings.HasSuffix(prompt, "2/3") {
		t.Fatalf("expected counter 2/3, got %q", prompt)
	}
	if got := term.Row(8); got != "▌ apple.md" {
		t.Fatalf("expected best match above prompt, got %q", got)
	}
}

func TestPickFooterHint(t *testing.T) {
	_, term := runPick(t, []string{"a"}, "\x1b", picker.WithFooter(true))
	if hint := term.Row(0); !strings.Contains(hint, "enter select") {
		t.Fatalf("expected key hint on top row, got %q", hint)
	}
}
