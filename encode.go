package relaywire

import (
	"fmt"
	"math"
	"reflect"
)

// Encode converts the typed value v into a JSON-safe tree according to s.
// It is the inverse of Decode: primitives pass through (integers as int64,
// floats as float64), sequences become []any, mappings become
// map[string]any and records become map[string]any keyed by their wire
// names. Absent optional record fields are omitted, never emitted as null.
//
// A value whose Go type does not conform to s yields an *EncodeError.
func Encode(v any, s Schema, path Path) (any, error) {
	switch s := s.(type) {
	case BoolSchema:
		b, ok := v.(bool)
		if !ok {
			return nil, encodeMismatch(path, s, v)
		}
		return b, nil
	case IntSchema:
		return encodeInt(v, path)
	case FloatSchema:
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case float32:
			f = float64(n)
		default:
			return nil, encodeMismatch(path, s, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &EncodeError{Path: path, Expected: "finite float", Got: fmt.Sprint(f)}
		}
		return f, nil
	case StrSchema:
		str, ok := v.(string)
		if !ok {
			return nil, encodeMismatch(path, s, v)
		}
		return str, nil
	case ListSchema:
		return encodeList(v, s, path)
	case MapSchema:
		return encodeMap(v, s, path)
	case RecordSchema:
		return encodeRecordValue(v, s, path)
	case nil:
		return nil, fmt.Errorf("relaywire: nil schema at %s", path.Display())
	}
	return nil, fmt.Errorf("relaywire: unsupported schema %T at %s", s, path.Display())
}

func encodeInt(v any, path Path) (any, error) {
	switch n := v.(type) {
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
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint, uint64:
		u := reflect.ValueOf(n).Uint()
		if u > math.MaxInt64 {
			return nil, &EncodeError{Path: path, Expected: "int64-range integer", Got: fmt.Sprint(u)}
		}
		return int64(u), nil
	}
	return nil, encodeMismatch(path, IntSchema{}, v)
}

func encodeList(v any, s ListSchema, path Path) (any, error) {
	if xs, ok := v.([]any); ok {
		out := make([]any, len(xs))
		for i, x := range xs {
			e, err := Encode(x, s.Elem, path.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, encodeMismatch(path, s, v)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		e, err := Encode(rv.Index(i).Interface(), s.Elem, path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func encodeMap(v any, s MapSchema, path Path) (any, error) {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, x := range m {
			e, err := Encode(x, s.Elem, path.Key(k))
			if err != nil {
				return nil, err
			}
			out[k] = e
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, encodeMismatch(path, s, v)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		e, err := Encode(iter.Value().Interface(), s.Elem, path.Key(k))
		if err != nil {
			return nil, err
		}
		out[k] = e
	}
	return out, nil
}

func encodeRecordValue(v any, s RecordSchema, path Path) (any, error) {
	switch s.Kind {
	case KindEntity:
		if r, ok := recordValue[Entity](v); ok {
			return encodeRecord(&r, entityFields, path)
		}
	case KindChannel:
		if r, ok := recordValue[Channel](v); ok {
			return encodeRecord(&r, channelFields, path)
		}
	case KindChannelsPage:
		if r, ok := recordValue[ChannelsPage](v); ok {
			return encodeRecord(&r, channelsPageFields, path)
		}
	case KindMessage:
		if r, ok := recordValue[Message](v); ok {
			return encodeRecord(&r, messageFields, path)
		}
	default:
		return nil, fmt.Errorf("relaywire: unknown record kind %v at %s", s.Kind, path.Display())
	}
	return nil, encodeMismatch(path, s, v)
}

// recordValue accepts R or a non-nil *R.
func recordValue[R any](v any) (R, bool) {
	switch r := v.(type) {
	case R:
		return r, true
	case *R:
		if r != nil {
			return *r, true
		}
	}
	var zero R
	return zero, false
}

func encodeRecord[R any](rec *R, fields []field[R], path Path) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		val, present := f.get(rec)
		if !present {
			continue
		}
		e, err := Encode(val, f.schema, path.Field(f.key))
		if err != nil {
			return nil, err
		}
		out[f.key] = e
	}
	return out, nil
}

func encodeMismatch(path Path, s Schema, v any) *EncodeError {
	return &EncodeError{Path: path, Expected: schemaString(s), Got: fmt.Sprintf("%T", v)}
}
