package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atomicstack/snipx/internal/logging/events"
)

const defaultEditor = "vi"

// Resolve picks the editor command: $EDITOR when set, then fallback, then vi.
func Resolve(fallback string) string {
	if env := strings.TrimSpace(os.Getenv("EDITOR")); env != "" {
		return env
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return defaultEditor
}

// Open edits path with editor attached to the current terminal.
func Open(editor, path string) error {
	events.Snippet.Open(path, "edit")
	return run(editor, "", path)
}

// OpenIn starts editor without a file inside dir.
func OpenIn(editor, dir string) error {
	events.Snippet.Open(dir, "new")
	return run(editor, dir)
}

// run splits editor on whitespace so values like "code -w" work.
func run(editor, dir string, args ...string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return errors.New("no editor configured")
	}
	cmd := exec.Command(fields[0], append(fields[1:], args...)...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", fields[0], err)
	}
	return nil
}
