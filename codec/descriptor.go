package codec

import (
	"github.com/reoring/relaywire"
)

// Descriptor returns the codec of a bare descriptor string, the body of a
// channel deletion request.
func Descriptor() Codec[string] { return scalarCodec[string]{schema: relaywire.Str()} }

// scalarCodec covers the primitive schemas whose decoded Go type is T.
type scalarCodec[T any] struct {
	schema relaywire.Schema
}

func (c scalarCodec[T]) Schema() relaywire.Schema { return c.schema }

func (c scalarCodec[T]) Marshal(v T) ([]byte, error) {
	tree, err := relaywire.Encode(v, c.schema, relaywire.Root)
	if err != nil {
		return nil, err
	}
	return relaywire.MarshalJSON(tree)
}

func (c scalarCodec[T]) Unmarshal(data []byte) (T, error) {
	var zero T
	tree, err := relaywire.ParseJSON(data)
	if err != nil {
		return zero, err
	}
	v, err := relaywire.Decode(tree, c.schema, relaywire.Root)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
