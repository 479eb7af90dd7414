package events

import (
	"fmt"

	"github.com/atomicstack/snipx/internal/logging"
)

type PickerTracer struct{}

var Picker = PickerTracer{}

func (PickerTracer) Start(candidates int, algorithm, term string) {
	logging.Trace("picker.start", map[string]interface{}{
		"candidates": candidates,
		"algorithm":  algorithm,
		"term":       term,
	})
}

func (PickerTracer) Key(name string) {
	logging.Trace("picker.key", map[string]interface{}{"key": name})
}

func (PickerTracer) Rank(term string, matches, total int) {
	logging.Trace("picker.rank", map[string]interface{}{"term": term, "matches": matches, "total": total})
}

func (PickerTracer) Commit(term string, selection []int) {
	logging.Trace("picker.commit", map[string]interface{}{"term": term, "selection": selection})
}

func (PickerTracer) Cancel(reason string) {
	logging.Trace("picker.cancel", map[string]interface{}{"reason": reason})
}

// Discard records input bytes dropped because they did not decode.
func (PickerTracer) Discard(raw []byte, reason string) {
	logging.Trace("picker.discard", map[string]interface{}{"bytes": fmt.Sprintf("%q", raw), "reason": reason})
}

func (PickerTracer) RenderError(err error) {
	if err == nil {
		return
	}
	logging.Trace("picker.render-error", map[string]interface{}{"error": err.Error()})
}
