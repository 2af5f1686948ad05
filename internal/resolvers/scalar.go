package resolvers

import (
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"
)

const dateTimeLayout = "2006-01-02T15:04:05.000Z"

// DateTime is the codec of the DateTime scalar. Values serialize as UTC
// ISO-8601 strings with millisecond precision. Input may be an RFC 3339
// string or whole seconds since the epoch.
var DateTime ScalarCodec = dateTime{}

type dateTime struct{}

func (dateTime) Serialize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t.UTC().Format(dateTimeLayout), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.UTC().Format(dateTimeLayout), nil
	case int64:
		return time.Unix(t, 0).UTC().Format(dateTimeLayout), nil
	}
	return nil, errors.Errorf("DateTime cannot represent %T", v)
}

func (dateTime) Parse(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, errors.Wrapf(err, "DateTime cannot represent %q", t)
		}
		return parsed, nil
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	case int32:
		return time.Unix(int64(t), 0).UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case float64:
		if t != math.Trunc(t) {
			return nil, errors.Errorf("DateTime cannot represent non-integer seconds %v", t)
		}
		return time.Unix(int64(t), 0).UTC(), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, errors.Wrapf(err, "DateTime cannot represent %q", t.String())
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return nil, errors.Errorf("DateTime cannot represent %T", v)
}
