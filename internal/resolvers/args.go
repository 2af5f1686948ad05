package resolvers

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// noArgs is the argument set of fields that take none.
type noArgs struct{}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: dateTimeHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// dateTimeHook accepts DateTime arguments that reach the resolver unparsed.
func dateTimeHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType || from == timeType {
		return data, nil
	}
	return DateTime.Parse(data)
}

func none[Req any](noArgs, any) (*Req, error) { return new(Req), nil }

func done[Res any](*Res) (*OkResult, error) { return &OkResult{Success: true}, nil }
