package picker

import "fmt"

// TerminalSetupError reports that exclusive terminal control could not be
// acquired. Nothing has been drawn when it is returned.
type TerminalSetupError struct {
	Op  string
	Err error
}

func (e *TerminalSetupError) Error() string {
	return fmt.Sprintf("terminal setup (%s): %v", e.Op, e.Err)
}

func (e *TerminalSetupError) Unwrap() error { return e.Err }

// RenderError reports a failed write to the terminal. It ends the pick.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// DecodeError reports input bytes that did not form a key. The bytes have
// already been consumed; callers discard them and keep reading.
type DecodeError struct {
	Bytes  []byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode input %q: %s", e.Bytes, e.Reason)
}
