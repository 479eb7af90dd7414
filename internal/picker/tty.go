package picker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/atomicstack/snipx/internal/logging/events"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// ErrNotTerminal is wrapped in a TerminalSetupError when the input is not
// an interactive terminal.
var ErrNotTerminal = errors.New("not a terminal")

// TTYOptions tunes the session.
type TTYOptions struct {
	// AltScreen switches to the alternate screen buffer while entered.
	AltScreen bool
}

// TTY is a Terminal backed by real file descriptors.
type TTY struct {
	in   *os.File
	out  *os.File
	w    *bufio.Writer
	opts TTYOptions
	own  bool

	mu      sync.Mutex
	entered bool
	state   *term.State
	sigs    chan os.Signal
	done    chan struct{}

	// rows drawn on since Enter, cleared on Exit without the alternate
	// screen.
	drawn          bool
	topRow, botRow int
}

// NewTTY wraps in and out. Neither file is closed by the session.
func NewTTY(in, out *os.File, opts TTYOptions) *TTY {
	return &TTY{
		in:   in,
		out:  out,
		w:    bufio.NewWriterSize(out, 16*1024),
		opts: opts,
	}
}

// OpenTTY opens the controlling terminal so the picker works while stdin
// and stdout are redirected. Close releases the descriptor.
func OpenTTY(opts TTYOptions) (*TTY, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, &TerminalSetupError{Op: "open", Err: err}
	}
	t := NewTTY(f, f, opts)
	t.own = true
	return t, nil
}

// Close exits the session if needed and closes a descriptor opened by
// OpenTTY.
func (t *TTY) Close() error {
	err := t.Exit()
	if t.own {
		err = errors.Join(err, t.in.Close())
	}
	return err
}

// Enter puts the terminal into raw mode, optionally switches to the
// alternate screen and hides the cursor. On failure everything already
// acquired is released before returning.
func (t *TTY) Enter() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entered {
		return nil
	}
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return &TerminalSetupError{Op: "check", Err: ErrNotTerminal}
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return &TerminalSetupError{Op: "raw mode", Err: err}
	}
	if t.opts.AltScreen {
		t.w.WriteString(ansi.SetAltScreenBufferMode)
	}
	t.HideCursor()
	if err := t.w.Flush(); err != nil {
		t.w.Reset(t.out)
		restoreErr := term.Restore(fd, state)
		return &TerminalSetupError{Op: "init", Err: errors.Join(err, restoreErr)}
	}
	t.state = state
	t.entered = true
	t.drawn = false
	t.watchSignals()
	events.Terminal.Enter(t.opts.AltScreen)
	return nil
}

// Exit undoes Enter. It is safe to call more than once and from any
// goroutine. The terminal mode is restored even when the writes fail.
func (t *TTY) Exit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.entered {
		return nil
	}
	t.entered = false
	t.stopSignals()

	if t.opts.AltScreen {
		t.w.WriteString(ansi.ResetAltScreenBufferMode)
	} else {
		t.clearDrawn()
	}
	t.ShowCursor()
	var errs []error
	if err := t.w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
		t.w.Reset(t.out)
	}
	if err := term.Restore(int(t.in.Fd()), t.state); err != nil {
		errs = append(errs, fmt.Errorf("restore: %w", err))
	}
	t.state = nil
	err := errors.Join(errs...)
	events.Terminal.Exit(err)
	return err
}

// clearDrawn blanks every row drawn on since Enter and parks the cursor at
// the first of them.
func (t *TTY) clearDrawn() {
	if !t.drawn {
		return
	}
	for row := t.topRow; row <= t.botRow; row++ {
		t.w.WriteString(ansi.CursorPosition(1, row+1) + ansi.EraseEntireLine)
	}
	t.w.WriteString(ansi.CursorPosition(1, t.topRow+1))
	t.drawn = false
}

// watchSignals restores the terminal before the process dies from a
// termination signal. Callers hold t.mu.
func (t *TTY) watchSignals() {
	t.sigs = make(chan os.Signal, 1)
	t.done = make(chan struct{})
	signal.Notify(t.sigs, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT)
	go func(sigs chan os.Signal, done chan struct{}) {
		select {
		case sig := <-sigs:
			_ = t.Exit()
			signal.Reset(sig)
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				_ = p.Signal(sig)
			}
		case <-done:
		}
	}(t.sigs, t.done)
}

func (t *TTY) stopSignals() {
	if t.sigs == nil {
		return
	}
	signal.Stop(t.sigs)
	close(t.done)
	t.sigs = nil
	t.done = nil
}

// Geometry reports the output size, falling back to 80x24 when the size
// cannot be determined.
func (t *TTY) Geometry() (Geometry, error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return Geometry{Width: fallbackWidth, Height: fallbackHeight}, nil
	}
	return Geometry{Width: w, Height: h}, nil
}

func (t *TTY) MoveCursor(col, row int) error {
	if !t.drawn {
		t.topRow, t.botRow = row, row
		t.drawn = true
	}
	if row < t.topRow {
		t.topRow = row
	}
	if row > t.botRow {
		t.botRow = row
	}
	_, err := t.w.WriteString(ansi.CursorPosition(col+1, row+1))
	return err
}

func (t *TTY) ClearLine() error {
	_, err := t.w.WriteString(ansi.EraseEntireLine)
	return err
}

func (t *TTY) Write(text string) error {
	_, err := t.w.WriteString(text)
	return err
}

func (t *TTY) ShowCursor() error {
	_, err := t.w.WriteString(ansi.ShowCursor)
	return err
}

func (t *TTY) HideCursor() error {
	_, err := t.w.WriteString(ansi.HideCursor)
	return err
}

func (t *TTY) Flush() error {
	return t.w.Flush()
}

// Input returns the raw input stream.
func (t *TTY) Input() io.Reader {
	return t.in
}

// Output exposes the writer styles should be bound to.
func (t *TTY) Output() io.Writer {
	return t.out
}
