package executor

import (
	"context"
	"errors"
	"fmt"

	language "github.com/hanpama/lngraph/internal/language"
)

// ErrNotSubscription is returned by Subscribe for query and mutation operations.
var ErrNotSubscription = errors.New("operation is not a subscription")

// SourceStream is the event source behind one subscription root field.
// Next blocks until an event arrives, the stream ends, or ctx is done.
type SourceStream interface {
	Next(ctx context.Context) (any, bool)
	Close() error
}

// StreamRuntime is a Runtime that can open source streams for subscription
// root fields. Each event is then executed against the subscription's
// selection set with the event as the root value, so the root field's
// ResolveSync receives the event as its source.
type StreamRuntime interface {
	Runtime
	Subscribe(ctx context.Context, objectType string, field string, args map[string]any) (SourceStream, error)
}

// Subscribe opens the source stream for a subscription operation and returns
// a channel of per-event results. The channel is closed when the stream ends,
// when ctx is done, or right after a result whose root field failed. Callers
// stop a subscription by cancelling ctx.
func (e *Executor) Subscribe(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
) (<-chan *ExecutionResult, error) {
	op, err := operation(document, operationName)
	if err != nil {
		return nil, err
	}
	if op.Operation != language.Subscription {
		return nil, ErrNotSubscription
	}
	srt, ok := e.runtime.(StreamRuntime)
	if !ok {
		return nil, errors.New("runtime does not support subscriptions")
	}
	req, root, err := e.start(ctx, document, op, variableValues)
	if err != nil {
		return nil, err
	}

	groups := req.collect(root, op.SelectionSet)
	if len(groups) != 1 {
		return nil, fmt.Errorf("subscription must select exactly one top level field, got %d", len(groups))
	}
	responseName := groups[0].name
	field := groups[0].fields[0]
	def := root.Field(field.Name)
	if def == nil {
		return nil, fmt.Errorf("Cannot query field '%s' on type '%s'", field.Name, root.Name)
	}
	args := req.arguments(def, field.Arguments, Path{responseName})
	if len(req.errors) > 0 {
		return nil, req.errors[0]
	}

	source, err := srt.Subscribe(ctx, root.Name, field.Name, args)
	if err != nil {
		return nil, err
	}

	out := make(chan *ExecutionResult)
	go func() {
		defer close(out)
		defer source.Close()
		for {
			event, ok := source.Next(ctx)
			if !ok {
				return
			}
			res := req.fork().run(root, op.SelectionSet, event)
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
			if rootFailed(res, responseName) {
				return
			}
		}
	}()
	return out, nil
}

func rootFailed(res *ExecutionResult, responseName string) bool {
	if len(res.Errors) == 0 {
		return false
	}
	data, _ := res.Data.(map[string]any)
	return isNullish(data[responseName])
}
