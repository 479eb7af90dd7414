package picker

import (
	"errors"
	"io"

	"github.com/atomicstack/snipx/internal/logging/events"
	"github.com/atomicstack/snipx/internal/theme"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Outcome is the terminal state of a pick.
type Outcome int

const (
	Editing Outcome = iota
	Committed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return "editing"
}

type options struct {
	algorithm Algorithm
	footer    bool
	keys      KeyMap
	term      string
	styles    *theme.Styles
}

// Option customises a pick.
type Option func(*options)

// WithAlgorithm selects the match scorer.
func WithAlgorithm(a Algorithm) Option {
	return func(o *options) { o.algorithm = a }
}

// WithFooter shows a one-line key hint above the list.
func WithFooter(enabled bool) Option {
	return func(o *options) { o.footer = enabled }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(o *options) { o.keys = k }
}

// WithInitialTerm starts the search with term already typed.
func WithInitialTerm(term string) Option {
	return func(o *options) { o.term = term }
}

// WithStyles overrides the styles. By default they are built for the
// terminal's own output.
func WithStyles(s *theme.Styles) Option {
	return func(o *options) { o.styles = s }
}

// Pick runs the interactive picker over candidates and returns the chosen
// candidate indices: one index on commit, none on cancel or when committing
// an empty ranking. Empty input returns immediately without touching t.
func Pick(t Terminal, candidates []string, opts ...Option) ([]int, error) {
	if len(candidates) == 0 {
		return []int{}, nil
	}
	o := options{algorithm: AlgorithmSmart, keys: DefaultKeyMap()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.styles == nil {
		o.styles = theme.New(lipgloss.NewRenderer(outputOf(t)))
	}
	hint := ""
	if o.footer {
		hint = helpLine(o.keys.ShortHelp())
	}

	engine := NewEngine(candidates, o.algorithm)
	if err := t.Enter(); err != nil {
		return nil, err
	}
	c := &controller{
		keys:     o.keys,
		state:    NewState(engine, o.term),
		renderer: NewRenderer(t, o.styles, hint),
		decoder:  NewDecoder(t.Input()),
	}
	defer c.decoder.Close()
	events.Picker.Start(len(candidates), string(engine.Algorithm()), o.term)

	result, err := func() (result []int, err error) {
		defer func() {
			if exitErr := t.Exit(); exitErr != nil {
				err = errors.Join(err, exitErr)
			}
		}()
		return c.run()
	}()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// outputOf finds the writer a Terminal's styles should detect colours on.
func outputOf(t Terminal) io.Writer {
	if o, ok := t.(interface{ Output() io.Writer }); ok {
		return o.Output()
	}
	return io.Discard
}

type controller struct {
	keys     KeyMap
	state    *State
	renderer *Renderer
	decoder  *Decoder
	outcome  Outcome
}

func (c *controller) run() ([]int, error) {
	if err := c.renderer.Draw(c.state); err != nil {
		events.Picker.RenderError(err)
		return nil, err
	}
	for c.outcome == Editing {
		ev, err := c.decoder.Next()
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				events.Picker.Discard(decodeErr.Bytes, decodeErr.Reason)
				continue
			}
			if errors.Is(err, io.EOF) {
				c.outcome = Cancelled
				events.Picker.Cancel("eof")
				break
			}
			return nil, err
		}
		if err := c.handle(ev); err != nil {
			events.Picker.RenderError(err)
			return nil, err
		}
	}
	if c.outcome == Cancelled {
		return []int{}, nil
	}
	selection := c.state.Selection()
	events.Picker.Commit(c.state.Term, selection)
	return selection, nil
}

// handle applies one event and repaints what it changed.
func (c *controller) handle(ev Event) error {
	events.Picker.Key(ev.String())
	s := c.state
	switch {
	case key.Matches(ev, c.keys.Accept):
		c.outcome = Committed
		return nil
	case key.Matches(ev, c.keys.Cancel):
		c.outcome = Cancelled
		events.Picker.Cancel(ev.String())
		return nil
	case key.Matches(ev, c.keys.Up):
		prev := s.Cursor
		if s.MoveUp() {
			return c.renderer.DrawMarker(s, prev)
		}
		return nil
	case key.Matches(ev, c.keys.Down):
		prev := s.Cursor
		if s.MoveDown() {
			return c.renderer.DrawMarker(s, prev)
		}
		return nil
	case key.Matches(ev, c.keys.PageUp):
		if s.PageUp(c.rows()) {
			return c.renderer.Draw(s)
		}
		return nil
	case key.Matches(ev, c.keys.PageDown):
		if s.PageDown(c.rows()) {
			return c.renderer.Draw(s)
		}
		return nil
	case key.Matches(ev, c.keys.Backspace):
		if !s.Backspace() {
			return nil
		}
	case key.Matches(ev, c.keys.DeleteWord):
		if !s.DeleteWordBackward() {
			return nil
		}
	case key.Matches(ev, c.keys.ClearTerm):
		if !s.ClearTerm() {
			return nil
		}
	case ev.Key == KeyRune:
		s.Append(ev.Rune)
	default:
		return nil
	}
	events.Picker.Rank(s.Term, len(s.Ranked), s.Total())
	return c.renderer.Draw(s)
}

func (c *controller) rows() int {
	g, err := c.renderer.term.Geometry()
	if err != nil {
		return 0
	}
	return c.renderer.Rows(g)
}
