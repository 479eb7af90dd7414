package display

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
)

const defaultWidth = 80

// Options controls how a snippet is printed.
type Options struct {
	// Raw prints the file unchanged.
	Raw bool
	// Width wraps rendered markdown; zero means 80 columns.
	Width int
	// Style names a glamour standard style. Empty detects one from the
	// terminal background.
	Style string
}

// File prints the snippet at path to w.
func File(w io.Writer, path string, opts Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snippet: %w", err)
	}
	return Markdown(w, string(data), opts)
}

// Markdown renders text to w.
func Markdown(w io.Writer, text string, opts Options) error {
	if opts.Raw {
		_, err := io.WriteString(w, text)
		return err
	}
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	style := glamour.WithAutoStyle()
	if opts.Style != "" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
