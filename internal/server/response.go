package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	executor "github.com/hanpama/lngraph/internal/executor"
	language "github.com/hanpama/lngraph/internal/language"
)

type location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// responseError is one entry of a response's "errors" list.
type responseError struct {
	Message    string         `json:"message"`
	Locations  []location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// response is a reply that never reached execution, or an execution that
// failed as a whole.
type response struct {
	Data   any             `json:"data"`
	Errors []responseError `json:"errors,omitempty"`
}

func failure(errs ...*language.Error) response {
	res := response{Errors: make([]responseError, len(errs))}
	for i, e := range errs {
		re := responseError{Message: e.Message, Extensions: e.Extensions}
		for _, l := range e.Locations {
			re.Locations = append(re.Locations, location{Line: l.Line, Column: l.Column})
		}
		res.Errors[i] = re
	}
	return res
}

// failureFrom turns parse, validation and execution errors into a response.
func failureFrom(err error) response {
	var (
		list language.ErrorList
		one  *language.Error
		exec executor.GraphQLError
	)
	switch {
	case errors.As(err, &list):
		return failure(list...)
	case errors.As(err, &one):
		return failure(one)
	case errors.As(err, &exec):
		re := responseError{Message: exec.Message, Extensions: exec.Extensions}
		for _, el := range exec.Path {
			re.Path = append(re.Path, el)
		}
		return response{Errors: []responseError{re}}
	}
	return failure(&language.Error{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func (h *Handler) originAllowed(origin string) bool {
	return slices.Contains(h.opt.AllowedOrigins, "*") || slices.Contains(h.opt.AllowedOrigins, origin)
}

func (h *Handler) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opt.AllowedOrigins) == 0 || !h.originAllowed(origin) {
		return
	}
	hdr := w.Header()
	if slices.Contains(h.opt.AllowedOrigins, "*") {
		hdr.Set("Access-Control-Allow-Origin", "*")
	} else {
		hdr.Set("Access-Control-Allow-Origin", origin)
		hdr.Add("Vary", "Origin")
	}
	hdr.Set("Access-Control-Expose-Headers", RequestIDHeader)
	if r.Method != http.MethodOptions {
		return
	}
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
		hdr.Set("Access-Control-Allow-Headers", req)
	}
}

func acceptsHTML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if mt == "text/html" || mt == "*/*" {
			return true
		}
	}
	return false
}
