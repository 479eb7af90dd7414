package events

import "github.com/atomicstack/snipx/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Mode(mode string, keywords []string) {
	logging.Trace("app.mode", map[string]interface{}{"mode": mode, "keywords": keywords})
}
