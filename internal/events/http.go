package events

import (
	"net/http"
	"time"
)

// HTTPStart is published by the GraphQL handler when a request arrives, with
// the request id already in the context.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish follows HTTPStart once the response is written. Status is the
// code sent to the client, 200 for GraphQL errors reported in the body.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
