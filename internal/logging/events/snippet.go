package events

import "github.com/atomicstack/snipx/internal/logging"

type SnippetTracer struct{}

var Snippet = SnippetTracer{}

func (SnippetTracer) Load(keywords []string, found, matched int) {
	logging.Trace("snippet.load", map[string]interface{}{
		"keywords": keywords,
		"found":    found,
		"matched":  matched,
	})
}

func (SnippetTracer) Open(path, action string) {
	logging.Trace("snippet.open", map[string]interface{}{"path": path, "action": action})
}

func (SnippetTracer) Create(path string, tags []string) {
	logging.Trace("snippet.create", map[string]interface{}{"path": path, "tags": tags})
}
