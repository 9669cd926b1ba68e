package relaywire

import "fmt"

// Schema describes the shape expected at one position of a JSON tree. The
// variant set is closed: Bool, Int, Float, Str, ListOf, MapOf and Record.
// Decode and Encode switch on the concrete variant exhaustively.
type Schema interface {
	// String renders the schema for error messages, e.g. "list<Entity>".
	String() string
	isSchema()
}

// BoolSchema expects a JSON boolean.
type BoolSchema struct{}

// IntSchema expects a JSON integer.
type IntSchema struct{}

// FloatSchema expects a JSON number. Integers are widened to float64.
type FloatSchema struct{}

// StrSchema expects a JSON string.
type StrSchema struct{}

// ListSchema expects a JSON array whose elements all conform to Elem.
type ListSchema struct{ Elem Schema }

// MapSchema expects a JSON object whose values all conform to Elem.
type MapSchema struct{ Elem Schema }

// RecordSchema expects a JSON object carrying the fields of one domain record.
type RecordSchema struct{ Kind RecordKind }

func (BoolSchema) isSchema()   {}
func (IntSchema) isSchema()    {}
func (FloatSchema) isSchema()  {}
func (StrSchema) isSchema()    {}
func (ListSchema) isSchema()   {}
func (MapSchema) isSchema()    {}
func (RecordSchema) isSchema() {}

func (BoolSchema) String() string     { return "bool" }
func (IntSchema) String() string      { return "int" }
func (FloatSchema) String() string    { return "float" }
func (StrSchema) String() string      { return "string" }
func (s ListSchema) String() string   { return "list<" + schemaString(s.Elem) + ">" }
func (s MapSchema) String() string    { return "map<" + schemaString(s.Elem) + ">" }
func (s RecordSchema) String() string { return s.Kind.String() }

func schemaString(s Schema) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}

// Bool returns the boolean schema.
func Bool() Schema { return BoolSchema{} }

// Int returns the integer schema.
func Int() Schema { return IntSchema{} }

// Float returns the floating point schema.
func Float() Schema { return FloatSchema{} }

// Str returns the string schema.
func Str() Schema { return StrSchema{} }

// ListOf returns a sequence schema with the given element schema.
func ListOf(elem Schema) Schema { return ListSchema{Elem: elem} }

// MapOf returns a string-keyed mapping schema with the given value schema.
func MapOf(elem Schema) Schema { return MapSchema{Elem: elem} }

// Record returns the schema of the given domain record kind.
func Record(kind RecordKind) Schema { return RecordSchema{Kind: kind} }

// RecordKind enumerates the domain records known to the codec.
type RecordKind int

const (
	KindEntity RecordKind = iota
	KindChannel
	KindChannelsPage
	KindMessage
)

// RecordKinds lists every record kind in declaration order.
var RecordKinds = []RecordKind{KindEntity, KindChannel, KindChannelsPage, KindMessage}

func (k RecordKind) String() string {
	switch k {
	case KindEntity:
		return "Entity"
	case KindChannel:
		return "Channel"
	case KindChannelsPage:
		return "ChannelsPage"
	case KindMessage:
		return "Message"
	default:
		return fmt.Sprintf("RecordKind(%d)", int(k))
	}
}

// ParseRecordKind resolves a record name case-insensitively, accepting both
// "ChannelsPage" and "channels_page" spellings.
func ParseRecordKind(name string) (RecordKind, error) {
	switch normalizeKindName(name) {
	case "entity":
		return KindEntity, nil
	case "channel":
		return KindChannel, nil
	case "channelspage":
		return KindChannelsPage, nil
	case "message":
		return KindMessage, nil
	}
	return 0, fmt.Errorf("relaywire: unknown record kind %q", name)
}

func normalizeKindName(name string) string {
	b := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c == '-':
			continue
		case 'A' <= c && c <= 'Z':
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}
