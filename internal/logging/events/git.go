package events

import (
	"time"

	"github.com/atomicstack/snipx/internal/logging"
)

type GitTracer struct{}

var Git = GitTracer{}

func (GitTracer) Run(dir string, args []string, elapsed time.Duration, err error) {
	payload := map[string]interface{}{
		"dir":        dir,
		"args":       args,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("git.run", payload)
}
