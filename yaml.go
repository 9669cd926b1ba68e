package relaywire

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a single YAML document into the same untyped tree model
// ParseJSON produces: string-keyed maps and []any sequences. YAML integers
// stay integers and YAML floats stay floats, so records authored in YAML
// decode exactly like their JSON equivalents.
func ParseYAML(data []byte) (any, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &DecodeError{Path: Root, Expected: "yaml", Actual: "malformed", Cause: err}
	}
	v, err := yamlNormalizeValue(node, Root)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// yamlNormalizeValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like trees recursively.
func yamlNormalizeValue(v any, path Path) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			nv, err := yamlNormalizeValue(vv, path.Key(k))
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, &DecodeError{Path: path, Expected: "string key", Actual: fmt.Sprintf("key of type %T", k)}
			}
			nv, err := yamlNormalizeValue(vv, path.Key(ks))
			if err != nil {
				return nil, err
			}
			out[ks] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			nv, err := yamlNormalizeValue(vv, path.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}
