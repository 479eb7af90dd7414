package main

import (
	"fmt"
	"os"

	"github.com/atomicstack/snipx/internal/app"
	"github.com/atomicstack/snipx/internal/config"
	"github.com/atomicstack/snipx/internal/logging"
	"github.com/atomicstack/snipx/internal/logging/events"
	"golang.org/x/term"
)

// pickerDevice is the terminal the picker opens, independent of
// redirected standard streams.
const pickerDevice = "/dev/tty"

func main() {
	os.Exit(run(os.Args[1:], os.Environ()))
}

// run returns the process exit status: 2 for configuration errors, 1 when
// the selected mode fails.
func run(args, environ []string) int {
	cfg, err := config.LoadArgs(args, environ)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 2
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	if logging.TraceEnabled() {
		events.App.Start(startupTracePayload(cfg))
	}

	if err := app.Run(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// startupTracePayload records how snipx was invoked and what terminal the
// picker will find.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    flags,
		"config":   cfg,
		"terminal": inspectTerminal(pickerDevice, cfg.App.AltScreen),
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	return payload
}

// terminalReport describes the picker's device. StdoutTerminal tells
// whether rendered snippets go to a terminal or a pipe.
type terminalReport struct {
	Device         string `json:"device"`
	AltScreen      bool   `json:"alt_screen"`
	IsTerminal     bool   `json:"is_terminal"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	StdoutTerminal bool   `json:"stdout_terminal"`
	Error          string `json:"error,omitempty"`
}

// inspectTerminal opens device the way the picker does and reports whether
// it is usable and how large it is.
func inspectTerminal(device string, altScreen bool) terminalReport {
	report := terminalReport{
		Device:         device,
		AltScreen:      altScreen,
		StdoutTerminal: term.IsTerminal(int(os.Stdout.Fd())),
	}
	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	defer f.Close()
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		report.Error = "not a terminal"
		return report
	}
	report.IsTerminal = true
	width, height, err := term.GetSize(fd)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Width, report.Height = width, height
	return report
}
