package testutil

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/atomicstack/snipx/internal/picker"
	"github.com/charmbracelet/x/ansi"
)

// ErrWriteFailed is returned by Terminal writes once the failure budget set
// with FailWritesAfter is used up.
var ErrWriteFailed = errors.New("testutil: write failed")

// Terminal is an in-memory picker.Terminal. It keeps a character grid of
// what was drawn, counts session transitions and feeds scripted input.
type Terminal struct {
	mu sync.Mutex

	geom   picker.Geometry
	screen [][]rune
	col    int
	row    int
	input  io.Reader

	entered       bool
	enters        int
	exits         int
	cursorVisible bool
	flushes       int
	cleared       []int

	enterErr   error
	writeLimit int
	writes     int
}

// NewTerminal returns a width x height terminal whose input yields keys.
func NewTerminal(width, height int, keys string) *Terminal {
	return NewTerminalReader(width, height, strings.NewReader(keys))
}

// NewTerminalReader is NewTerminal with an arbitrary input stream.
func NewTerminalReader(width, height int, input io.Reader) *Terminal {
	t := &Terminal{
		input:         input,
		cursorVisible: true,
		writeLimit:    -1,
	}
	t.Resize(width, height)
	return t
}

// FailEnter makes the next Enter fail with err.
func (t *Terminal) FailEnter(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enterErr = err
}

// FailWritesAfter lets n more drawing calls succeed and fails every call
// after that.
func (t *Terminal) FailWritesAfter(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeLimit = n
	t.writes = 0
}

// Resize changes the reported geometry and blanks the grid.
func (t *Terminal) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.geom = picker.Geometry{Width: width, Height: height}
	t.screen = make([][]rune, height)
	for i := range t.screen {
		t.screen[i] = blankRow(width)
	}
}

func blankRow(width int) []rune {
	return []rune(strings.Repeat(" ", width))
}

func (t *Terminal) Enter() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enterErr != nil {
		err := t.enterErr
		t.enterErr = nil
		return &picker.TerminalSetupError{Op: "raw mode", Err: err}
	}
	if t.entered {
		return nil
	}
	t.entered = true
	t.enters++
	t.cursorVisible = false
	return nil
}

func (t *Terminal) Exit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.entered {
		return nil
	}
	t.entered = false
	t.exits++
	t.cursorVisible = true
	return nil
}

func (t *Terminal) Geometry() (picker.Geometry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.geom, nil
}

func (t *Terminal) spend() error {
	if t.writeLimit < 0 {
		return nil
	}
	if t.writes >= t.writeLimit {
		return ErrWriteFailed
	}
	t.writes++
	return nil
}

func (t *Terminal) MoveCursor(col, row int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.spend(); err != nil {
		return err
	}
	t.col, t.row = col, row
	return nil
}

func (t *Terminal) ClearLine() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.spend(); err != nil {
		return err
	}
	if t.row >= 0 && t.row < len(t.screen) {
		t.screen[t.row] = blankRow(t.geom.Width)
		t.cleared = append(t.cleared, t.row)
	}
	return nil
}

// Write places text at the cursor, dropping escape sequences and anything
// past the right edge.
func (t *Terminal) Write(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.spend(); err != nil {
		return err
	}
	if t.row < 0 || t.row >= len(t.screen) {
		return nil
	}
	for _, r := range ansi.Strip(text) {
		if t.col >= t.geom.Width {
			break
		}
		t.screen[t.row][t.col] = r
		t.col++
	}
	return nil
}

func (t *Terminal) ShowCursor() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursorVisible = true
	return nil
}

func (t *Terminal) HideCursor() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursorVisible = false
	return nil
}

func (t *Terminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.spend(); err != nil {
		return err
	}
	t.flushes++
	return nil
}

func (t *Terminal) Input() io.Reader {
	return t.input
}

// Screen returns every row with trailing blanks trimmed.
func (t *Terminal) Screen() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := make([]string, len(t.screen))
	for i, r := range t.screen {
		rows[i] = strings.TrimRight(string(r), " ")
	}
	return rows
}

// Row returns a single trimmed row.
func (t *Terminal) Row(i int) string {
	rows := t.Screen()
	if i < 0 || i >= len(rows) {
		return ""
	}
	return rows[i]
}

// TakeCleared returns the rows cleared since the previous call.
func (t *Terminal) TakeCleared() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.cleared
	t.cleared = nil
	return out
}

// Enters reports how many times the session was entered.
func (t *Terminal) Enters() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enters
}

// Exits reports how many times the session was released.
func (t *Terminal) Exits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exits
}

// Entered reports whether the session is currently held.
func (t *Terminal) Entered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entered
}

// CursorVisible reports the cursor visibility last requested.
func (t *Terminal) CursorVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursorVisible
}

// Flushes reports how many frames were flushed.
func (t *Terminal) Flushes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushes
}
