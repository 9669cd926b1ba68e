// Package codec binds the relaywire Decoder and Encoder to the active JSON
// driver, giving one typed []byte codec per wire shape.
package codec

import (
	"github.com/reoring/relaywire"
)

// Codec converts between JSON bytes and a typed wire value.
type Codec[T any] interface {
	// Schema returns the schema both directions are checked against.
	Schema() relaywire.Schema
	Marshal(v T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// Entity returns the codec of the Entity record.
func Entity() Codec[relaywire.Entity] {
	return recordCodec[relaywire.Entity]{kind: relaywire.KindEntity, decode: relaywire.DecodeEntity, encode: relaywire.EncodeEntity}
}

// Channel returns the codec of the Channel record.
func Channel() Codec[relaywire.Channel] {
	return recordCodec[relaywire.Channel]{kind: relaywire.KindChannel, decode: relaywire.DecodeChannel, encode: relaywire.EncodeChannel}
}

// ChannelsPage returns the codec of the ChannelsPage record.
func ChannelsPage() Codec[relaywire.ChannelsPage] {
	return recordCodec[relaywire.ChannelsPage]{kind: relaywire.KindChannelsPage, decode: relaywire.DecodeChannelsPage, encode: relaywire.EncodeChannelsPage}
}

// Message returns the codec of the Message record.
func Message() Codec[relaywire.Message] {
	return recordCodec[relaywire.Message]{kind: relaywire.KindMessage, decode: relaywire.DecodeMessage, encode: relaywire.EncodeMessage}
}

type recordCodec[R relaywire.DomainRecord] struct {
	kind   relaywire.RecordKind
	decode func(any, relaywire.Path) (R, error)
	encode func(R, relaywire.Path) (map[string]any, error)
}

func (c recordCodec[R]) Schema() relaywire.Schema { return relaywire.Record(c.kind) }

func (c recordCodec[R]) Marshal(v R) ([]byte, error) {
	tree, err := c.encode(v, relaywire.Root)
	if err != nil {
		return nil, err
	}
	return relaywire.MarshalJSON(tree)
}

func (c recordCodec[R]) Unmarshal(data []byte) (R, error) {
	tree, err := relaywire.ParseJSON(data)
	if err != nil {
		var zero R
		return zero, err
	}
	return c.decode(tree, relaywire.Root)
}
