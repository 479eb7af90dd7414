package gitutil

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atomicstack/snipx/internal/logging/events"
)

// Status summarises a working tree.
type Status int

const (
	Clean Status = iota
	Modified
)

func (s Status) String() string {
	if s == Modified {
		return "modified"
	}
	return "clean"
}

// Pull fast-forwards the repository at dir.
func Pull(dir string) error {
	if _, err := runGit(dir, "pull"); err != nil {
		return fmt.Errorf("git pull: %w", err)
	}
	return nil
}

// StatusOf reports whether dir has uncommitted or untracked changes.
func StatusOf(dir string) (Status, error) {
	out, err := runGit(dir, "status", "--porcelain")
	if err != nil {
		return Clean, fmt.Errorf("git status --porcelain: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return Clean, nil
	}
	return Modified, nil
}

// AddAll stages every change in dir.
func AddAll(dir string) error {
	if _, err := runGit(dir, "add", "--all"); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	return nil
}

// Commit records the staged changes with message.
func Commit(dir, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("git commit: empty commit message")
	}
	if _, err := runGit(dir, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// Push publishes the current branch.
func Push(dir string) error {
	if _, err := runGit(dir, "push"); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

// Save stages, commits and pushes dir. A clean tree is only pushed, which
// publishes earlier local commits. It reports whether anything was
// committed.
func Save(dir, message string) (bool, error) {
	status, err := StatusOf(dir)
	if err != nil {
		return false, err
	}
	if status == Clean {
		return false, Push(dir)
	}
	if err := AddAll(dir); err != nil {
		return false, err
	}
	if err := Commit(dir, message); err != nil {
		return false, err
	}
	if err := Push(dir); err != nil {
		return true, err
	}
	return true, nil
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	if err != nil {
		err = fmt.Errorf("%w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	events.Git.Run(dir, args, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return stdout.String(), nil
}
