package relaywire

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Decode converts the untyped JSON value v into a typed value described by s.
// path locates v for error reporting; pass Root at the top level.
//
// Results by schema: Bool -> bool, Int -> int64, Float -> float64,
// Str -> string, ListOf -> []any, MapOf -> map[string]any, Record(kind) ->
// Entity, Channel, ChannelsPage or Message. The first mismatch aborts
// decoding with a *DecodeError. Keys not declared by a record are ignored.
func Decode(v any, s Schema, path Path) (any, error) {
	switch s := s.(type) {
	case BoolSchema:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(path, s, v)
		}
		return b, nil
	case IntSchema:
		return decodeInt(v, path)
	case FloatSchema:
		return decodeFloat(v, path)
	case StrSchema:
		str, ok := v.(string)
		if !ok {
			return nil, mismatch(path, s, v)
		}
		return str, nil
	case ListSchema:
		xs, ok := v.([]any)
		if !ok {
			return nil, mismatch(path, s, v)
		}
		out := make([]any, len(xs))
		for i, x := range xs {
			d, err := Decode(x, s.Elem, path.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case MapSchema:
		m, err := asObject(v, path, s)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(m))
		for k, x := range m {
			d, err := Decode(x, s.Elem, path.Key(k))
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil
	case RecordSchema:
		m, err := asObject(v, path, s)
		if err != nil {
			return nil, err
		}
		switch s.Kind {
		case KindEntity:
			return decodeRecord(m, entityFields, path)
		case KindChannel:
			return decodeRecord(m, channelFields, path)
		case KindChannelsPage:
			return decodeRecord(m, channelsPageFields, path)
		case KindMessage:
			return decodeRecord(m, messageFields, path)
		}
		return nil, fmt.Errorf("relaywire: unknown record kind %v at %s", s.Kind, path.Display())
	case nil:
		return nil, fmt.Errorf("relaywire: nil schema at %s", path.Display())
	}
	return nil, fmt.Errorf("relaywire: unsupported schema %T at %s", s, path.Display())
}

func decodeRecord[R any](m map[string]any, fields []field[R], path Path) (R, error) {
	var rec R
	for _, f := range fields {
		fp := path.Field(f.key)
		raw, ok := m[f.key]
		if !ok {
			if f.optional {
				continue
			}
			var zero R
			return zero, &DecodeError{Path: fp, Expected: ExpectedPresent, Actual: ActualMissing}
		}
		d, err := Decode(raw, f.schema, fp)
		if err != nil {
			var zero R
			return zero, err
		}
		f.set(&rec, d)
	}
	return rec, nil
}

func decodeInt(v any, path Path) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if !isIntegerLiteral(string(n)) {
			return 0, mismatch(path, IntSchema{}, v)
		}
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, &DecodeError{Path: path, Expected: IntSchema{}.String(), Actual: "out-of-range integer " + string(n)}
		}
		return i, nil
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintToInt64(uint64(n), path)
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintToInt64(n, path)
	}
	return 0, mismatch(path, IntSchema{}, v)
}

func uintToInt64(u uint64, path Path) (int64, error) {
	if u > math.MaxInt64 {
		return 0, &DecodeError{Path: path, Expected: IntSchema{}.String(), Actual: "out-of-range integer " + strconv.FormatUint(u, 10)}
	}
	return int64(u), nil
}

// decodeFloat accepts integers as well: JSON does not tell 1 from 1.0.
func decodeFloat(v any, path Path) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, &DecodeError{Path: path, Expected: FloatSchema{}.String(), Actual: "out-of-range number " + string(n)}
		}
		return f, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	if KindOf(v) == KindInteger {
		i, err := decodeInt(v, path)
		if err != nil {
			return 0, err
		}
		return float64(i), nil
	}
	return 0, mismatch(path, FloatSchema{}, v)
}

// asObject accepts map[string]any, or map[any]any whose keys are all strings.
func asObject(v any, path Path, s Schema) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, x := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, &DecodeError{Path: path, Expected: "string key", Actual: fmt.Sprintf("key of type %T", k)}
			}
			out[ks] = x
		}
		return out, nil
	}
	return nil, mismatch(path, s, v)
}

func mismatch(path Path, s Schema, v any) *DecodeError {
	return &DecodeError{Path: path, Expected: expectedName(s), Actual: KindOf(v).String()}
}

func expectedName(s Schema) string {
	switch s := s.(type) {
	case ListSchema:
		return "array"
	case MapSchema, RecordSchema:
		return "object"
	case FloatSchema:
		return "number"
	case IntSchema:
		return "integer"
	default:
		return schemaString(s)
	}
}
