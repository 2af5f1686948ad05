package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

// Request is one GraphQL request as sent by clients.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// requestError is a request rejected before execution.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

// decodeJSON keeps numbers exact so 64-bit amounts survive.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// readRequests extracts the requests carried by r and reports whether the
// body was a JSON array.
func (h *Handler) readRequests(w http.ResponseWriter, r *http.Request) ([]Request, bool, *requestError) {
	if r.Method == http.MethodGet {
		req, qerr := queryRequest(r)
		if qerr != nil {
			return nil, false, qerr
		}
		return []Request{req}, false, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, perr := mime.ParseMediaType(ct); perr != nil || mt != "application/json" {
			return nil, false, &requestError{status: http.StatusUnsupportedMediaType, msg: "unsupported Content-Type"}
		}
	}

	body := io.Reader(r.Body)
	if h.opt.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opt.MaxBodyBytes)
	}
	data, rerr := io.ReadAll(body)
	if rerr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(rerr, &tooLarge) {
			return nil, false, &requestError{status: http.StatusRequestEntityTooLarge, msg: "body too large"}
		}
		return nil, false, badRequest("failed to read body")
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var reqs []Request
		if derr := decodeJSON(data, &reqs); derr != nil {
			return nil, false, badRequest("invalid JSON")
		}
		if len(reqs) == 0 {
			return nil, false, badRequest("empty batch")
		}
		return reqs, true, nil
	}

	var req Request
	if derr := decodeJSON(data, &req); derr != nil {
		return nil, false, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return nil, false, badRequest("missing 'query'")
	}
	return []Request{req}, false, nil
}

func queryRequest(r *http.Request) (Request, *requestError) {
	q := r.URL.Query()
	req := Request{Query: q.Get("query"), OperationName: q.Get("operationName")}
	if req.Query == "" {
		return req, badRequest("missing 'query'")
	}
	if v := q.Get("variables"); v != "" {
		if err := decodeJSON([]byte(v), &req.Variables); err != nil {
			return req, badRequest("invalid 'variables' JSON")
		}
	}
	return req, nil
}
