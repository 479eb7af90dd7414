package events

import "github.com/atomicstack/snipx/internal/logging"

type TerminalTracer struct{}

var Terminal = TerminalTracer{}

func (TerminalTracer) Enter(altScreen bool) {
	logging.Trace("terminal.enter", map[string]interface{}{"alt_screen": altScreen})
}

func (TerminalTracer) Exit(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("terminal.exit", payload)
}
