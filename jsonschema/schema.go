package jsonschema

// Draft04 is the meta-schema URI written into exported documents.
const Draft04 = "http://json-schema.org/draft-04/schema#"

// Schema is a minimal JSON Schema (draft-04) representation used for export.
type Schema struct {
	SchemaURI   string             `json:"$schema,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// Core
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}

// RefTo returns a schema referencing a local definition.
func RefTo(name string) *Schema { return &Schema{Ref: "#/definitions/" + name} }

// Walk calls fn for s and every schema nested below it, depth first.
// Definitions are visited in no particular order.
func (s *Schema) Walk(fn func(*Schema)) {
	if s == nil {
		return
	}
	fn(s)
	for _, p := range s.Properties {
		p.Walk(fn)
	}
	if s.Items != nil {
		s.Items.Walk(fn)
	}
	if ap, ok := s.AdditionalProperties.(*Schema); ok {
		ap.Walk(fn)
	}
	for _, d := range s.Definitions {
		d.Walk(fn)
	}
}
