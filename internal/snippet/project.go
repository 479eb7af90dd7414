package snippet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	projectFileName = ".x.toml"
	defaultDirName  = ".snippets"
	defaultExt      = "md"
)

// Location is one directory of snippet files.
type Location struct {
	Local string `toml:"local"`
	Ext   string `toml:"ext"`
	// Git marks the directory as a repository for pull and save. When
	// unset the directory is checked for a .git entry.
	Git *bool `toml:"git,omitempty"`
}

// Project lists every snippet location.
type Project struct {
	Locations []Location `toml:"locations"`

	// Path is the file the project was read from.
	Path string `toml:"-"`
	// Exists is false when no project file was found. The defaults were
	// written to Path in that case.
	Exists bool `toml:"-"`
}

// IsGit reports whether pull and save apply to the location.
func (l Location) IsGit() bool {
	if l.Git != nil {
		return *l.Git
	}
	info, err := os.Stat(filepath.Join(l.Local, ".git"))
	return err == nil && info.IsDir()
}

// Extension returns the snippet file extension without a leading dot.
func (l Location) Extension() string {
	ext := strings.TrimPrefix(strings.TrimSpace(l.Ext), ".")
	if ext == "" {
		return defaultExt
	}
	return ext
}

// Write stores the project at Path. It never replaces an existing file.
func (p *Project) Write() error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(p.Path), err)
	}
	f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write project %s: %w", p.Path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write project %s: %w", p.Path, err)
	}
	return f.Close()
}

// DefaultProjectPath returns ~/.x.toml.
func DefaultProjectPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, projectFileName), nil
}

// DefaultProject is used when no project file exists: a single ~/.snippets
// location holding markdown files.
func DefaultProject(home string) *Project {
	return &Project{
		Locations: []Location{{
			Local: filepath.Join(home, defaultDirName),
			Ext:   defaultExt,
		}},
	}
}

// LoadProject reads the project file at path. An empty path means
// DefaultProjectPath. A missing file yields DefaultProject, which is also
// written to path so there is a file to edit.
func LoadProject(path string) (*Project, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("find home directory: %w", err)
	}
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(home, projectFileName)
	}
	path = expandHome(path, home)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		p := DefaultProject(home)
		p.Path = path
		if err := p.Write(); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}
	p, err := ParseProject(data, home)
	if err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	p.Path = path
	p.Exists = true
	return p, nil
}

// ParseProject decodes a project document. Relative and ~ prefixed
// locations resolve against home.
func ParseProject(data []byte, home string) (*Project, error) {
	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if len(p.Locations) == 0 {
		return nil, errors.New("no locations configured")
	}
	for i := range p.Locations {
		loc := &p.Locations[i]
		local := expandHome(strings.TrimSpace(loc.Local), home)
		if local == "" {
			return nil, fmt.Errorf("location %d has no local directory", i)
		}
		if !filepath.IsAbs(local) {
			local = filepath.Join(home, local)
		}
		loc.Local = local
		loc.Ext = loc.Extension()
	}
	return &p, nil
}

// EnsureDirs creates missing location directories.
func (p *Project) EnsureDirs() error {
	for _, loc := range p.Locations {
		if err := os.MkdirAll(loc.Local, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", loc.Local, err)
		}
	}
	return nil
}

// GitLocations returns the locations that are repositories.
func (p *Project) GitLocations() []Location {
	var out []Location
	for _, loc := range p.Locations {
		if loc.IsGit() {
			out = append(out, loc)
		}
	}
	return out
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
