package display

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkdownRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, "# Title\n`code`\n", Options{Raw: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "# Title\n`code`\n" {
		t.Fatalf("expected raw passthrough, got %q", buf.String())
	}
}

func TestMarkdownRendered(t *testing.T) {
	var buf bytes.Buffer
	err := Markdown(&buf, "# Rebase\n\nRun `git rebase -i HEAD~3`.\n", Options{Style: "notty", Width: 60})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Rebase") || !strings.Contains(out, "git rebase -i HEAD~3") {
		t.Fatalf("expected rendered text, got %q", out)
	}
}

func TestFileMissing(t *testing.T) {
	var buf bytes.Buffer
	if err := File(&buf, filepath.Join(t.TempDir(), "nope.md"), Options{Raw: true}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFileRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.md")
	if err := os.WriteFile(path, []byte("git,\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := File(&buf, path, Options{Raw: true}); err != nil {
		t.Fatalf("file: %v", err)
	}
	if buf.String() != "git,\nbody\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
