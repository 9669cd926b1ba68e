package relaywire

import (
	"encoding/json"
	"strings"
)

// ValueKind classifies a node of an untyped JSON tree.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject
	KindUnknown
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf classifies v. Trees produced by ParseJSON carry numbers as
// json.Number; an integer is a number literal without fraction or exponent,
// so "1" is an integer and "1.0" a float. Native Go numbers (as produced by
// ParseYAML or built by hand) classify by their Go type.
func KindOf(v any) ValueKind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number:
		if isIntegerLiteral(string(t)) {
			return KindInteger
		}
		return KindFloat
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInteger
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any, map[any]any:
		return KindObject
	default:
		return KindUnknown
	}
}

func isIntegerLiteral(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".eE")
}
