package picker_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/atomicstack/snipx/internal/picker"
	"github.com/atomicstack/snipx/internal/testutil"
)

func newRenderFixture(width, height int, hint string, texts ...string) (*testutil.Terminal, *picker.Renderer, *picker.State) {
	term := testutil.NewTerminal(width, height, "")
	r := picker.NewRenderer(term, nil, hint)
	s := picker.NewState(picker.NewEngine(texts, picker.AlgorithmSmart), "")
	return term, r, s
}

func TestDrawBottomAnchored(t *testing.T) {
	term, r, s := newRenderFixture(20, 5, "", "a", "b", "c")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	want := []string{"", "▌ c", "▌ b", "▌ a"}
	for row, line := range want {
		if got := term.Row(row); got != line {
			t.Fatalf("row %d: expected %q, got %q", row, line, got)
		}
	}
	prompt := term.Row(4)
	if !strings.HasPrefix(prompt, "> ") || !strings.HasSuffix(prompt, "3/3") {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if len([]rune(prompt)) != 20 {
		t.Fatalf("expected counter right aligned at width 20, got %q", prompt)
	}
}

func TestDrawTruncatesToVisibleRows(t *testing.T) {
	term, r, s := newRenderFixture(20, 3, "", "a", "b", "c", "d")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := term.Row(1); got != "▌ a" {
		t.Fatalf("expected best match above prompt, got %q", got)
	}
	if got := term.Row(0); got != "▌ b" {
		t.Fatalf("expected second match on top row, got %q", got)
	}
	if !strings.HasSuffix(term.Row(2), "4/4") {
		t.Fatalf("expected counter 4/4, got %q", term.Row(2))
	}
}

func TestDrawTruncatesLongText(t *testing.T) {
	term, r, s := newRenderFixture(10, 2, "", "abcdefghijklmnop")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := term.Row(0); got != "▌ abcdefg…" {
		t.Fatalf("expected truncated row, got %q", got)
	}
}

func TestDrawClearsOnlyRewrittenRows(t *testing.T) {
	term, r, s := newRenderFixture(20, 6, "", "apple", "banana", "cherry")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	term.TakeCleared()

	s.Append('b')
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	cleared := term.TakeCleared()
	for _, row := range cleared {
		if row < 2 {
			t.Fatalf("row %d was never drawn but got cleared: %v", row, cleared)
		}
	}
	if len(cleared) != 4 {
		t.Fatalf("expected 3 list rows and the prompt cleared, got %v", cleared)
	}
	if got := term.Row(2); got != "" {
		t.Fatalf("expected stale row 2 blank, got %q", got)
	}
	if got := term.Row(4); got != "▌ banana" {
		t.Fatalf("expected banana above prompt, got %q", got)
	}
}

func TestDrawMarkerRepaintsTwoRows(t *testing.T) {
	term, r, s := newRenderFixture(20, 5, "", "a", "b", "c")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	term.TakeCleared()
	prev := s.Cursor
	s.MoveUp()
	if err := r.DrawMarker(s, prev); err != nil {
		t.Fatalf("draw marker: %v", err)
	}
	cleared := term.TakeCleared()
	if len(cleared) != 2 || cleared[0] != 3 || cleared[1] != 2 {
		t.Fatalf("expected rows [3 2] repainted, got %v", cleared)
	}
}

func TestDrawKeepsBestMatchesOnScreen(t *testing.T) {
	term, r, s := newRenderFixture(20, 3, "", "a", "b", "c", "d")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	for i := 0; i < 3; i++ {
		prev := s.Cursor
		s.MoveUp()
		if err := r.DrawMarker(s, prev); err != nil {
			t.Fatalf("draw marker: %v", err)
		}
	}
	if s.Cursor != 1 {
		t.Fatalf("expected cursor clamped to the top visible row, got %d", s.Cursor)
	}
	if got := term.Row(0); !strings.HasSuffix(got, "b") {
		t.Fatalf("expected b on the top row, got %q", got)
	}
	if got := term.Row(1); got != "▌ a" {
		t.Fatalf("expected a above the prompt, got %q", got)
	}
}

func TestDrawHintRow(t *testing.T) {
	term, r, s := newRenderFixture(60, 5, "enter select", "a")
	if err := r.Draw(s); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := term.Row(0); got != "enter select" {
		t.Fatalf("expected hint on top row, got %q", got)
	}
	if got := term.Row(3); got != "▌ a" {
		t.Fatalf("expected match above prompt, got %q", got)
	}
}

func TestDrawReportsRenderError(t *testing.T) {
	term, r, s := newRenderFixture(20, 5, "", "a")
	term.FailWritesAfter(1)
	err := r.Draw(s)
	var renderErr *picker.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if !errors.Is(err, testutil.ErrWriteFailed) {
		t.Fatalf("expected wrapped write failure, got %v", err)
	}
}
