package events

import (
	"time"

	"google.golang.org/grpc/codes"
)

// GRPCClientStart is emitted before a call to lnd. For streaming calls it is
// emitted before the stream is opened.
type GRPCClientStart struct {
	// CallID pairs the start with its finish.
	CallID    string
	Service   string
	Method    string
	Target    string
	Streaming bool
}

// GRPCClientFinish is emitted after a unary call completes or a stream ends,
// so Duration covers the whole life of a stream. A stream that ends with
// io.EOF reports codes.OK.
type GRPCClientFinish struct {
	CallID    string
	Service   string
	Method    string
	Target    string
	Streaming bool
	Code      codes.Code
	Err       error
	Duration  time.Duration
}
