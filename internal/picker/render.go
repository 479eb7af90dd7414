package picker

import (
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/snipx/internal/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	indicator    = "▌"
	promptPrefix = "> "
	ellipsis     = "…"
)

// Renderer draws the picker bottom-anchored: the prompt sits on the last
// row, the best visible match directly above it and worse matches grow
// upward. An optional hint row takes the top line.
type Renderer struct {
	term   Terminal
	styles *theme.Styles
	hint   string

	geom      Geometry
	listRows  int
	drawnOnce bool
}

// NewRenderer draws onto t. An empty hint disables the hint row.
func NewRenderer(t Terminal, styles *theme.Styles, hint string) *Renderer {
	if styles == nil {
		styles = theme.New(lipgloss.NewRenderer(io.Discard))
	}
	return &Renderer{term: t, styles: styles, hint: hint}
}

// Rows reports how many list entries fit in g.
func (r *Renderer) Rows(g Geometry) int {
	reserved := 1
	if r.hint != "" {
		reserved++
	}
	rows := g.Height - reserved
	if rows < 0 {
		return 0
	}
	return rows
}

func (r *Renderer) promptRow(g Geometry) int {
	if g.Height < 1 {
		return 0
	}
	return g.Height - 1
}

// Draw repaints the list and the prompt. Only rows that carry content now,
// or carried list content in the previous frame, are cleared.
func (r *Renderer) Draw(s *State) error {
	g, err := r.term.Geometry()
	if err != nil {
		return &RenderError{Err: err}
	}
	rows := r.Rows(g)
	s.SetWindow(rows)
	visible := s.Visible(rows)
	promptRow := r.promptRow(g)

	stale := r.listRows
	if r.drawnOnce && g != r.geom {
		// Geometry changed: the old frame's rows no longer line up.
		stale = g.Height
	}
	for i := 0; i < rows || i < stale; i++ {
		row := promptRow - 1 - i
		if row < 0 {
			break
		}
		if i < len(visible) {
			if err := r.drawEntry(g, row, s, i); err != nil {
				return err
			}
			continue
		}
		if i < stale {
			if err := r.clearRow(row); err != nil {
				return err
			}
		}
	}
	if r.hint != "" && promptRow > 0 {
		if err := r.clearRow(0); err != nil {
			return err
		}
		if err := r.term.Write(r.styles.Footer.Render(ansi.Truncate(r.hint, g.Width, ellipsis))); err != nil {
			return &RenderError{Err: err}
		}
	}
	if err := r.drawPrompt(g, promptRow, s); err != nil {
		return err
	}
	r.geom = g
	r.listRows = len(visible)
	r.drawnOnce = true
	return r.flush()
}

// DrawMarker moves the selection marker from prevCursor to the current
// cursor by repainting just those two rows. It repaints everything when the
// terminal was resized.
func (r *Renderer) DrawMarker(s *State, prevCursor int) error {
	g, err := r.term.Geometry()
	if err != nil {
		return &RenderError{Err: err}
	}
	if !r.drawnOnce || g != r.geom {
		return r.Draw(s)
	}
	rows := r.Rows(g)
	s.SetWindow(rows)
	if prevCursor == s.Cursor {
		return nil
	}
	promptRow := r.promptRow(g)
	for _, idx := range []int{prevCursor, s.Cursor} {
		if idx < 0 || idx >= rows || idx >= len(s.Ranked) {
			continue
		}
		row := promptRow - 1 - idx
		if row < 0 {
			continue
		}
		if err := r.drawEntry(g, row, s, idx); err != nil {
			return err
		}
	}
	return r.flush()
}

func (r *Renderer) clearRow(row int) error {
	if err := r.term.MoveCursor(0, row); err != nil {
		return &RenderError{Err: err}
	}
	if err := r.term.ClearLine(); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

func (r *Renderer) flush() error {
	if err := r.term.Flush(); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

func (r *Renderer) drawEntry(g Geometry, row int, s *State, idx int) error {
	if err := r.clearRow(row); err != nil {
		return err
	}
	m := s.Ranked[idx]
	line := r.entryLine(s.engine.Candidate(m.Index).Text, m.Positions, idx == s.Cursor, g.Width)
	if err := r.term.Write(line); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// entryLine renders one candidate: the indicator, then the text truncated to
// width with matched runes highlighted.
func (r *Renderer) entryLine(text string, positions []int, selected bool, width int) string {
	indicatorStyle := r.styles.ItemIndicator
	itemStyle := r.styles.Item
	matchStyle := r.styles.Match
	if selected {
		indicatorStyle = r.styles.SelectedItemIndicator
		itemStyle = r.styles.SelectedItem
		matchStyle = r.styles.SelectedMatch
	}
	head := indicator + " "
	budget := width - ansi.StringWidth(head)
	if width <= 0 {
		budget = ansi.StringWidth(text)
	}
	if budget <= 0 {
		return indicatorStyle.Render(ansi.Truncate(head, width, ""))
	}

	matched := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		matched[p] = struct{}{}
	}
	limit := budget
	if ansi.StringWidth(text) > budget {
		limit = budget - ansi.StringWidth(ellipsis)
	}

	var b strings.Builder
	b.WriteString(indicatorStyle.Render(head))
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		style := itemStyle
		if runMatched {
			style = matchStyle
		}
		b.WriteString(style.Render(run.String()))
		run.Reset()
	}
	used := 0
	truncated := false
	idx := 0
	for _, ch := range text {
		w := ansi.StringWidth(string(ch))
		if used+w > limit {
			truncated = true
			break
		}
		_, isMatch := matched[idx]
		if isMatch != runMatched {
			flush()
			runMatched = isMatch
		}
		run.WriteRune(ch)
		used += w
		idx++
	}
	flush()
	if truncated {
		b.WriteString(itemStyle.Render(ellipsis))
		used += ansi.StringWidth(ellipsis)
	}
	if selected && width > 0 && used < budget {
		b.WriteString(itemStyle.Render(strings.Repeat(" ", budget-used)))
	}
	return b.String()
}

func (r *Renderer) drawPrompt(g Geometry, row int, s *State) error {
	if err := r.clearRow(row); err != nil {
		return err
	}
	if err := r.term.Write(r.promptLine(s.Term, len(s.Ranked), s.Total(), g.Width)); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// promptLine renders "> term" with a right aligned matches/total counter.
// The term is truncated first; the counter is dropped when even a bare
// prompt does not fit beside it.
func (r *Renderer) promptLine(term string, matches, total, width int) string {
	counter := fmt.Sprintf("%d/%d", matches, total)
	left := promptPrefix + term
	if width <= 0 {
		return r.styles.Prompt.Render(promptPrefix) + r.styles.Filter.Render(term) + " " + r.styles.Counter.Render(counter)
	}
	counterWidth := ansi.StringWidth(counter)
	avail := width - counterWidth - 1
	showCounter := avail >= ansi.StringWidth(promptPrefix)+1
	if !showCounter {
		avail = width
	}
	if ansi.StringWidth(left) > avail {
		left = truncate.StringWithTail(left, uint(avail), ellipsis)
	}
	prefix, rest := left, ""
	if strings.HasPrefix(left, promptPrefix) {
		prefix, rest = promptPrefix, strings.TrimPrefix(left, promptPrefix)
	}
	line := r.styles.Prompt.Render(prefix) + r.styles.Filter.Render(rest)
	if showCounter {
		pad := width - ansi.StringWidth(left) - counterWidth
		line += strings.Repeat(" ", pad) + r.styles.Counter.Render(counter)
	}
	return line
}
