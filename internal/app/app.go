package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atomicstack/snipx/internal/display"
	"github.com/atomicstack/snipx/internal/editor"
	"github.com/atomicstack/snipx/internal/format/table"
	"github.com/atomicstack/snipx/internal/gitutil"
	"github.com/atomicstack/snipx/internal/logging/events"
	"github.com/atomicstack/snipx/internal/picker"
	"github.com/atomicstack/snipx/internal/snippet"
	"github.com/atomicstack/snipx/internal/theme"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
)

// Mode selects what a run does.
type Mode string

const (
	ModeShow Mode = "show"
	ModeEdit Mode = "edit"
	ModeAdd  Mode = "add"
	ModeNew  Mode = "new"
	ModePull Mode = "pull"
	ModeSave Mode = "save"
	ModeList Mode = "list"
)

// Config describes user-provided application options.
type Config struct {
	ProjectPath string
	Mode        Mode
	AddName     string
	Message     string
	Keywords    []string
	Raw         bool
	Copy        bool
	Editor      string
	Algorithm   string
	AltScreen   bool
	ShowFooter  bool
	Query       string
	Width       int
}

// Env holds the side effects of a run so tests can replace them.
type Env struct {
	Stdout io.Writer
	Stdin  io.Reader
	// Pick asks the user to choose among candidates.
	Pick   func(candidates []string) ([]int, error)
	Edit   func(editor, path string) error
	EditIn func(editor, dir string) error
	Copy   func(text string) error
}

// Run executes cfg against the real terminal, editor and clipboard.
func Run(cfg Config) error {
	return RunWith(cfg, DefaultEnv(cfg))
}

// DefaultEnv wires the interactive picker to the controlling terminal.
func DefaultEnv(cfg Config) Env {
	algorithm, err := picker.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		algorithm = picker.AlgorithmSmart
	}
	return Env{
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
		Pick: func(candidates []string) ([]int, error) {
			if len(candidates) == 0 {
				return []int{}, nil
			}
			tty, err := picker.OpenTTY(picker.TTYOptions{AltScreen: cfg.AltScreen})
			if err != nil {
				return nil, err
			}
			defer tty.Close()
			return picker.Pick(tty, candidates,
				picker.WithAlgorithm(algorithm),
				picker.WithFooter(cfg.ShowFooter),
				picker.WithInitialTerm(cfg.Query),
			)
		},
		Edit:   editor.Open,
		EditIn: editor.OpenIn,
		Copy:   clipboard.WriteAll,
	}
}

// RunWith executes cfg using env for every side effect.
func RunWith(cfg Config, env Env) error {
	project, err := snippet.LoadProject(cfg.ProjectPath)
	if err != nil {
		return err
	}
	if err := project.EnsureDirs(); err != nil {
		return err
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeShow
	}
	events.App.Mode(string(mode), cfg.Keywords)

	r := &runner{cfg: cfg, env: env, project: project, editor: editor.Resolve(cfg.Editor)}
	switch mode {
	case ModeAdd, ModeNew:
		err = r.create(mode)
	case ModePull:
		err = r.pull()
	case ModeSave:
		err = r.save()
	case ModeList:
		err = r.list()
	case ModeShow, ModeEdit:
		err = r.open(mode)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}
	return r.reportModified()
}

type runner struct {
	cfg     Config
	env     Env
	project *snippet.Project
	editor  string
	stdin   *bufio.Reader
}

func (r *runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.env.Stdout, format, args...)
}

// chooseLocation asks which location to use when there is more than one.
// ok is false when the user cancelled.
func (r *runner) chooseLocation() (snippet.Location, bool, error) {
	locs := r.project.Locations
	if len(locs) == 1 {
		return locs[0], true, nil
	}
	names := make([]string, len(locs))
	for i, loc := range locs {
		names[i] = loc.Local
	}
	chosen, err := r.env.Pick(names)
	if err != nil {
		return snippet.Location{}, false, err
	}
	if len(chosen) == 0 {
		return snippet.Location{}, false, nil
	}
	return locs[chosen[0]], true, nil
}

func (r *runner) create(mode Mode) error {
	loc, ok, err := r.chooseLocation()
	if err != nil || !ok {
		return err
	}
	if mode == ModeNew {
		return r.env.EditIn(r.editor, loc.Local)
	}
	created, err := snippet.Create(loc, r.cfg.AddName, r.cfg.Keywords)
	if err != nil {
		return err
	}
	return r.env.Edit(r.editor, created.Path)
}

func (r *runner) pull() error {
	for _, loc := range r.project.GitLocations() {
		r.printf("Pulling %s\n", loc.Local)
		if err := gitutil.Pull(loc.Local); err != nil {
			return fmt.Errorf("pull %s: %w", loc.Local, err)
		}
	}
	return nil
}

func (r *runner) save() error {
	for _, loc := range r.project.GitLocations() {
		status, err := gitutil.StatusOf(loc.Local)
		if err != nil {
			return fmt.Errorf("status %s: %w", loc.Local, err)
		}
		if status == gitutil.Clean {
			r.printf("Pushing %s\n", loc.Local)
			if _, err := gitutil.Save(loc.Local, ""); err != nil {
				return fmt.Errorf("push %s: %w", loc.Local, err)
			}
			continue
		}
		message := r.cfg.Message
		if strings.TrimSpace(message) == "" {
			if message, err = r.prompt(fmt.Sprintf("Commit message for %s: ", loc.Local)); err != nil {
				return err
			}
		}
		r.printf("Saving %s\n", loc.Local)
		if _, err := gitutil.Save(loc.Local, message); err != nil {
			return fmt.Errorf("save %s: %w", loc.Local, err)
		}
	}
	return nil
}

func (r *runner) prompt(question string) (string, error) {
	if r.stdin == nil {
		r.stdin = bufio.NewReader(r.env.Stdin)
	}
	r.printf("%s", question)
	line, err := r.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (r *runner) load() ([]snippet.Snippet, error) {
	paths, err := snippet.Find(r.project)
	if err != nil {
		return nil, err
	}
	return snippet.Load(paths, r.cfg.Keywords)
}

// Rows renders snippets as aligned "tags  file" lines.
func Rows(snippets []snippet.Snippet) []string {
	rows := make([][]string, len(snippets))
	for i, s := range snippets {
		rows[i] = []string{s.Label(), s.Name()}
	}
	return table.Format(rows, nil)
}

func (r *runner) list() error {
	snippets, err := r.load()
	if err != nil {
		return err
	}
	for _, line := range Rows(snippets) {
		r.printf("%s\n", line)
	}
	return nil
}

func (r *runner) open(mode Mode) error {
	snippets, err := r.load()
	if err != nil {
		return err
	}
	var chosen []int
	switch len(snippets) {
	case 0:
		r.printf("No snippets found\n")
		return nil
	case 1:
		chosen = []int{0}
	default:
		if chosen, err = r.env.Pick(Rows(snippets)); err != nil {
			return err
		}
	}
	for _, idx := range chosen {
		s := snippets[idx]
		if mode == ModeEdit {
			if err := r.env.Edit(r.editor, s.Path); err != nil {
				return err
			}
			continue
		}
		events.Snippet.Open(s.Path, "display")
		if err := display.File(r.env.Stdout, s.Path, display.Options{Raw: r.cfg.Raw, Width: r.cfg.Width}); err != nil {
			return err
		}
		if r.cfg.Copy {
			body, err := snippet.Body(s.Path)
			if err != nil {
				return err
			}
			if err := r.env.Copy(body); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}
		}
	}
	return nil
}

// reportModified lists repository locations with uncommitted changes.
func (r *runner) reportModified() error {
	locs := r.project.GitLocations()
	if len(locs) == 0 {
		return nil
	}
	styles := theme.New(lipgloss.NewRenderer(r.env.Stdout))
	for _, loc := range locs {
		status, err := gitutil.StatusOf(loc.Local)
		if err != nil {
			return fmt.Errorf("status %s: %w", loc.Local, err)
		}
		if status == gitutil.Modified {
			r.printf("%s %s\n", styles.Error.Render(filepath.Clean(loc.Local)), styles.Info.Render("has modified files"))
		}
	}
	return nil
}
