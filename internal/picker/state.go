package picker

import "unicode"

// State is the live search: the term, its ranking and the cursor. Cursor
// indexes Ranked, counted from the best match. Once a window is set the
// cursor never leaves the best window entries.
type State struct {
	Term   string
	Ranked []MatchResult
	Cursor int

	engine   *Engine
	history  []snapshot
	window   int
	windowed bool
}

// snapshot records the view as it was before a rune was appended, so
// removing that rune again restores it exactly.
type snapshot struct {
	termLen int
	ranked  []MatchResult
	cursor  int
}

// NewState ranks the engine's candidates against term.
func NewState(engine *Engine, term string) *State {
	s := &State{Term: term, engine: engine}
	s.Ranked = engine.Rank(term)
	return s
}

// Total reports the number of candidates behind the ranking.
func (s *State) Total() int {
	return s.engine.Len()
}

// Append adds r to the term and re-ranks.
func (s *State) Append(r rune) {
	s.history = append(s.history, snapshot{
		termLen: len(s.Term),
		ranked:  s.Ranked,
		cursor:  s.Cursor,
	})
	s.Term += string(r)
	s.rerank()
}

// Backspace removes the last rune of the term. It reports false when the
// term was already empty.
func (s *State) Backspace() bool {
	runes := []rune(s.Term)
	if len(runes) == 0 {
		return false
	}
	s.truncate(string(runes[:len(runes)-1]))
	return true
}

// DeleteWordBackward removes trailing spaces and the word before them.
func (s *State) DeleteWordBackward() bool {
	runes := []rune(s.Term)
	if len(runes) == 0 {
		return false
	}
	i := len(runes)
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	s.truncate(string(runes[:i]))
	return true
}

// ClearTerm empties the term.
func (s *State) ClearTerm() bool {
	if s.Term == "" {
		return false
	}
	s.truncate("")
	return true
}

// truncate shortens the term to prefix, restoring the recorded view when
// the prefix was reached by appending.
func (s *State) truncate(prefix string) {
	var restore *snapshot
	for len(s.history) > 0 {
		top := s.history[len(s.history)-1]
		if top.termLen < len(prefix) {
			break
		}
		s.history = s.history[:len(s.history)-1]
		if top.termLen == len(prefix) {
			restore = &top
		}
	}
	s.Term = prefix
	if restore != nil {
		s.Ranked = restore.ranked
		s.Cursor = restore.cursor
		s.clamp()
		return
	}
	s.rerank()
}

func (s *State) rerank() {
	s.Ranked = s.engine.Rank(s.Term)
	s.clamp()
}

func (s *State) clamp() {
	if s.Cursor >= s.limit() {
		s.Cursor = s.limit() - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// limit is the number of entries the cursor may reach.
func (s *State) limit() int {
	n := len(s.Ranked)
	if s.windowed && n > s.window {
		n = s.window
		if n < 1 {
			n = 1
		}
	}
	return n
}

// SetWindow bounds the cursor to the best rows entries, the part of the
// ranking that is on screen.
func (s *State) SetWindow(rows int) {
	s.window = rows
	s.windowed = true
	s.clamp()
}

// MoveUp moves toward worse matches.
func (s *State) MoveUp() bool {
	return s.moveCursorBy(1)
}

// MoveDown moves toward the best match.
func (s *State) MoveDown() bool {
	return s.moveCursorBy(-1)
}

// PageUp moves toward worse matches by one page of rows.
func (s *State) PageUp(rows int) bool {
	return s.moveCursorBy(s.pageSize(rows))
}

// PageDown moves toward the best match by one page of rows.
func (s *State) PageDown(rows int) bool {
	return s.moveCursorBy(-s.pageSize(rows))
}

func (s *State) moveCursorBy(delta int) bool {
	if len(s.Ranked) == 0 {
		s.Cursor = 0
		return false
	}
	old := s.Cursor
	s.Cursor += delta
	s.clamp()
	return s.Cursor != old
}

func (s *State) pageSize(rows int) int {
	size := rows
	if size <= 0 || size > s.limit() {
		size = s.limit()
	}
	if size < 1 {
		size = 1
	}
	return size
}

// Visible returns the best rows entries of the ranking.
func (s *State) Visible(rows int) []MatchResult {
	if rows <= 0 {
		return nil
	}
	if rows > len(s.Ranked) {
		rows = len(s.Ranked)
	}
	return s.Ranked[:rows]
}

// Selection returns the committed candidate indices: the entry under the
// cursor, or nothing when no candidate matches.
func (s *State) Selection() []int {
	if len(s.Ranked) == 0 {
		return []int{}
	}
	return []int{s.Ranked[s.Cursor].Index}
}
