package snippet

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/snipx/internal/logging/events"
)

// ErrExists is returned by Create when the target file is already there.
var ErrExists = errors.New("snippet already exists")

// Snippet is a file whose first line lists its tags.
type Snippet struct {
	Path string
	Tags []string
	// Matched counts the tags that matched the search keywords.
	Matched int
}

// Name is the file name without directories.
func (s Snippet) Name() string {
	return filepath.Base(s.Path)
}

// Label joins the tags for display.
func (s Snippet) Label() string {
	return strings.Join(s.Tags, ", ")
}

// ParseTags splits a tag header line. Blank entries are dropped.
func ParseTags(line string) []string {
	var tags []string
	for _, part := range strings.Split(line, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ReadTags reads the tag header of the file at path.
func ReadTags(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, sc.Err()
	}
	return ParseTags(sc.Text()), nil
}

// Body returns the file content after the tag header.
func Body(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[i+1:], nil
	}
	return "", nil
}

// Find lists the snippet files of every location, per location in name
// order.
func Find(p *Project) ([]string, error) {
	var paths []string
	for _, loc := range p.Locations {
		entries, err := os.ReadDir(loc.Local)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", loc.Local, err)
		}
		suffix := "." + loc.Extension()
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
				continue
			}
			paths = append(paths, filepath.Join(loc.Local, entry.Name()))
		}
	}
	return paths, nil
}

// Load reads the tags of every path and keeps the snippets carrying at least
// one keyword, or all of them when no keywords are given. Snippets with more
// matching tags come first; equal counts keep path order.
func Load(paths []string, keywords []string) ([]Snippet, error) {
	snippets := make([]Snippet, 0, len(paths))
	for _, path := range paths {
		tags, err := ReadTags(path)
		if err != nil {
			return nil, fmt.Errorf("read tags %s: %w", path, err)
		}
		matched := countMatches(tags, keywords)
		if len(keywords) > 0 && matched == 0 {
			continue
		}
		snippets = append(snippets, Snippet{Path: path, Tags: tags, Matched: matched})
	}
	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Matched > snippets[j].Matched
	})
	events.Snippet.Load(keywords, len(paths), len(snippets))
	return snippets, nil
}

func countMatches(tags, keywords []string) int {
	n := 0
	for _, tag := range tags {
		for _, kw := range keywords {
			if strings.EqualFold(tag, kw) {
				n++
				break
			}
		}
	}
	return n
}

// Create writes a new snippet named name into loc with keywords as its tag
// header. The location extension is appended when name has none. Existing
// files are never overwritten.
func Create(loc Location, name string, keywords []string) (Snippet, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) {
		return Snippet{}, fmt.Errorf("invalid snippet name %q", name)
	}
	if filepath.Ext(name) == "" {
		name += "." + loc.Extension()
	}
	path := filepath.Join(loc.Local, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return Snippet{}, fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err != nil {
		return Snippet{}, fmt.Errorf("create %s: %w", path, err)
	}
	var header strings.Builder
	for _, kw := range keywords {
		header.WriteString(kw)
		header.WriteString(",")
	}
	header.WriteString("\n")
	if _, err := f.WriteString(header.String()); err != nil {
		f.Close()
		return Snippet{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Snippet{}, fmt.Errorf("close %s: %w", path, err)
	}
	events.Snippet.Create(path, keywords)
	return Snippet{Path: path, Tags: ParseTags(header.String())}, nil
}
