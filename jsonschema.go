package relaywire

import (
	"fmt"

	js "github.com/reoring/relaywire/jsonschema"
)

// JSONSchemaOf exports s as a draft-04 JSON Schema document. Records are
// emitted once under "definitions" and referenced with "$ref", so the
// document for Record(KindChannelsPage) also defines Channel and Entity.
func JSONSchemaOf(s Schema) (*js.Schema, error) {
	defs := map[string]*js.Schema{}
	root, err := jsonSchemaNode(s, defs)
	if err != nil {
		return nil, err
	}
	root.SchemaURI = js.Draft04
	if len(defs) > 0 {
		root.Definitions = defs
	}
	return root, nil
}

// RecordJSONSchema exports the schema of one record kind, titled with the
// record name.
func RecordJSONSchema(kind RecordKind) (*js.Schema, error) {
	doc, err := JSONSchemaOf(Record(kind))
	if err != nil {
		return nil, err
	}
	doc.Title = kind.String()
	return doc, nil
}

func jsonSchemaNode(s Schema, defs map[string]*js.Schema) (*js.Schema, error) {
	switch s := s.(type) {
	case BoolSchema:
		return &js.Schema{Type: "boolean"}, nil
	case IntSchema:
		return &js.Schema{Type: "integer", Format: "int32"}, nil
	case FloatSchema:
		return &js.Schema{Type: "number", Format: "float"}, nil
	case StrSchema:
		return &js.Schema{Type: "string"}, nil
	case ListSchema:
		items, err := jsonSchemaNode(s.Elem, defs)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: items}, nil
	case MapSchema:
		elem, err := jsonSchemaNode(s.Elem, defs)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "object", AdditionalProperties: elem}, nil
	case RecordSchema:
		name := s.Kind.String()
		if _, done := defs[name]; !done {
			fields := Fields(s.Kind)
			if fields == nil {
				return nil, fmt.Errorf("relaywire: unknown record kind %v", s.Kind)
			}
			// Reserve the slot before descending so recursive kinds terminate.
			def := &js.Schema{Type: "object"}
			defs[name] = def
			def.Properties = make(map[string]*js.Schema, len(fields))
			for _, f := range fields {
				p, err := jsonSchemaNode(f.Schema, defs)
				if err != nil {
					return nil, err
				}
				def.Properties[f.Key] = p
				if !f.Optional {
					def.Required = append(def.Required, f.Key)
				}
			}
		}
		return js.RefTo(name), nil
	case nil:
		return nil, fmt.Errorf("relaywire: nil schema")
	}
	return nil, fmt.Errorf("relaywire: unsupported schema %T", s)
}

