package resolvers

import (
	"context"
)

// Unary adapts a single request, single response call. Arguments are decoded
// into A and turned into the request by before; the response is turned into
// the field value by after. An error from call is returned as is.
func Unary[A, Req, Res, Out any](
	call func(context.Context, *Req) (*Res, error),
	before func(args A, parent any) (*Req, error),
	after func(*Res) (Out, error),
) FieldResolver {
	return func(ctx context.Context, parent any, args map[string]any) (any, error) {
		var a A
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		req, err := before(a, parent)
		if err != nil {
			return nil, err
		}
		res, err := call(ctx, req)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = new(Res)
		}
		return after(res)
	}
}
