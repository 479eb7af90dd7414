package picker

import "io"

// Geometry is the terminal size in cells.
type Geometry struct {
	Width  int
	Height int
}

// Terminal is the picker's exclusive handle on the interactive terminal.
// Coordinates are zero based. Writes may be buffered until Flush.
type Terminal interface {
	Enter() error
	Exit() error
	Geometry() (Geometry, error)
	MoveCursor(col, row int) error
	ClearLine() error
	Write(text string) error
	ShowCursor() error
	HideCursor() error
	Flush() error
	Input() io.Reader
}
