package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
)

//go:embed playground.html
var playgroundHTML string

var playgroundTemplate = template.Must(template.New("playground").Parse(playgroundHTML))

// Playground serves the GraphiQL IDE pointed at the configured endpoint.
// Subscriptions in the IDE run over graphql-transport-ws.
func (h *Handler) Playground() http.Handler {
	var buf bytes.Buffer
	if err := playgroundTemplate.Execute(&buf, struct{ Endpoint string }{h.opt.Endpoint}); err != nil {
		panic(err)
	}
	page := buf.Bytes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
}
