package gqlrt

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc/status"

	"github.com/hanpama/lngraph/internal/resolvers"
)

// Error codes reported in GraphQL error extensions besides the gRPC code
// names.
const (
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeInternal     = "INTERNAL"
)

// fieldError carries the code a client sees in extensions.code. The message
// and the wrapped chain are left as they came from the resolver, so
// status.Code still works on it.
type fieldError struct {
	err  error
	code string
}

func (e *fieldError) Error() string { return e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }
func (e *fieldError) Cause() error  { return e.err }

func (e *fieldError) Extensions() map[string]any {
	return map[string]any{"code": e.code}
}

func wrapFieldError(err error) error {
	if err == nil {
		return nil
	}
	return &fieldError{err: err, code: errorCode(err)}
}

func errorCode(err error) string {
	if st, ok := status.FromError(err); ok {
		return st.Code().String()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, resolvers.ErrUnknownUpdate),
		errors.Is(err, resolvers.ErrUnexpectedPayload),
		errors.Is(err, ErrNoResolver):
		return CodeInternal
	}
	return CodeBadUserInput
}
