package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/snipx/internal/app"
	"github.com/atomicstack/snipx/internal/picker"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envProject    = "SNIPX_PROJECT"
	envEditor     = "SNIPX_EDITOR"
	envAlgorithm  = "SNIPX_ALGORITHM"
	envAltScreen  = "SNIPX_ALT_SCREEN"
	envShowFooter = "SNIPX_FOOTER"
	envRaw        = "SNIPX_RAW"
	envWidth      = "SNIPX_WIDTH"
	envTrace      = "SNIPX_TRACE"
	envLogFile    = "SNIPX_LOG_FILE"
)

// LoadArgs parses configuration from CLI arguments and environment
// variables. Positional arguments are search keywords.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("snipx", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	project := fs.String("project", envOrDefault(env, envProject, ""), "path to the project file (default ~/.x.toml)")
	edit := fs.Bool("edit", false, "open the chosen snippet in the editor")
	add := fs.String("add", "", "create a snippet with this file name tagged with the keywords")
	newSnippet := fs.Bool("new", false, "start the editor in a snippet location")
	pull := fs.Bool("pull", false, "git pull every repository location")
	save := fs.Bool("save", false, "commit and push modified repository locations")
	message := fs.String("message", "", "commit message for --save (prompted when empty)")
	list := fs.Bool("list", false, "print matching snippets without the picker")
	raw := fs.Bool("raw", envOrBool(env, envRaw, false), "print snippets without markdown rendering")
	copyBody := fs.Bool("copy", false, "copy the chosen snippet body to the clipboard")
	editor := fs.String("editor", envOrDefault(env, envEditor, ""), "editor used when $EDITOR is unset")
	algorithm := fs.String("algorithm", envOrDefault(env, envAlgorithm, string(picker.AlgorithmSmart)), "match algorithm: smart or normalized")
	altScreen := fs.Bool("alt-screen", envOrBool(env, envAltScreen, true), "draw the picker on the alternate screen")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable the key hint row (disabled by default)")
	query := fs.String("query", "", "initial picker search term")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "markdown wrap width in cells (0 uses 80)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	keywords, err := parseInterleaved(fs, args)
	if err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}

	mode, err := selectMode(map[app.Mode]bool{
		app.ModeEdit: *edit,
		app.ModeAdd:  *add != "",
		app.ModeNew:  *newSnippet,
		app.ModePull: *pull,
		app.ModeSave: *save,
		app.ModeList: *list,
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			ProjectPath: *project,
			Mode:        mode,
			AddName:     *add,
			Message:     *message,
			Keywords:    keywords,
			Raw:         *raw,
			Copy:        *copyBody,
			Editor:      *editor,
			Algorithm:   *algorithm,
			AltScreen:   *altScreen,
			ShowFooter:  *footer,
			Query:       *query,
			Width:       *width,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"project":   *project,
			"mode":      string(mode),
			"add":       *add,
			"raw":       strconv.FormatBool(*raw),
			"copy":      strconv.FormatBool(*copyBody),
			"editor":    *editor,
			"algorithm": *algorithm,
			"altScreen": strconv.FormatBool(*altScreen),
			"footer":    strconv.FormatBool(*footer),
			"query":     *query,
			"width":     strconv.Itoa(*width),
			"trace":     strconv.FormatBool(*trace),
			"logFile":   *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// parseInterleaved lets flags follow keywords ("snipx git rebase --edit").
// Everything after "--" is a keyword.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var keywords []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		remaining := fs.Args()
		consumed := len(rest) - len(remaining)
		if consumed > 0 && rest[consumed-1] == "--" {
			return append(keywords, remaining...), nil
		}
		if len(remaining) == 0 {
			return keywords, nil
		}
		keywords = append(keywords, remaining[0])
		rest = remaining[1:]
	}
}

// selectMode allows at most one mode flag; none means show.
func selectMode(set map[app.Mode]bool) (app.Mode, error) {
	var chosen []string
	mode := app.ModeShow
	for _, m := range []app.Mode{app.ModeEdit, app.ModeAdd, app.ModeNew, app.ModePull, app.ModeSave, app.ModeList} {
		if set[m] {
			chosen = append(chosen, "--"+string(m))
			mode = m
		}
	}
	if len(chosen) > 1 {
		return "", fmt.Errorf("flags %s are mutually exclusive", strings.Join(chosen, ", "))
	}
	return mode, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// Validate checks combinations the flag parser cannot.
func Validate(cfg Config) error {
	if _, err := picker.ParseAlgorithm(cfg.App.Algorithm); err != nil {
		return err
	}
	if cfg.App.Mode == app.ModeAdd && len(cfg.App.Keywords) == 0 {
		return fmt.Errorf("--add needs at least one keyword to tag the snippet")
	}
	if cfg.App.Copy && cfg.App.Mode != app.ModeShow {
		return fmt.Errorf("--copy only applies when showing a snippet")
	}
	return nil
}
