package relaywire

import (
	"fmt"
	"reflect"
)

// Named entry points per record. Each is Decode or Encode bound to the
// record's schema; callers that know which record they expect use these
// instead of asserting on the result of Decode.

// DecodeEntity decodes an Entity from an untyped mapping.
func DecodeEntity(v any, path Path) (Entity, error) { return decodeAs[Entity](v, KindEntity, path) }

// DecodeChannel decodes a Channel from an untyped mapping.
func DecodeChannel(v any, path Path) (Channel, error) {
	return decodeAs[Channel](v, KindChannel, path)
}

// DecodeChannelsPage decodes a ChannelsPage from an untyped mapping.
func DecodeChannelsPage(v any, path Path) (ChannelsPage, error) {
	return decodeAs[ChannelsPage](v, KindChannelsPage, path)
}

// DecodeMessage decodes a Message from an untyped mapping.
func DecodeMessage(v any, path Path) (Message, error) {
	return decodeAs[Message](v, KindMessage, path)
}

// EncodeEntity encodes e into a JSON-safe mapping.
func EncodeEntity(e Entity, path Path) (map[string]any, error) {
	return encodeRecord(&e, entityFields, path)
}

// EncodeChannel encodes c into a JSON-safe mapping.
func EncodeChannel(c Channel, path Path) (map[string]any, error) {
	return encodeRecord(&c, channelFields, path)
}

// EncodeChannelsPage encodes p into a JSON-safe mapping.
func EncodeChannelsPage(p ChannelsPage, path Path) (map[string]any, error) {
	return encodeRecord(&p, channelsPageFields, path)
}

// EncodeMessage encodes m into a JSON-safe mapping.
func EncodeMessage(m Message, path Path) (map[string]any, error) {
	return encodeRecord(&m, messageFields, path)
}

// EncodeRecord encodes any domain record against its own schema.
func EncodeRecord(r DomainRecord, path Path) (map[string]any, error) {
	if r == nil {
		return nil, &EncodeError{Path: path, Expected: "record", Got: "nil"}
	}
	if rv := reflect.ValueOf(r); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, &EncodeError{Path: path, Expected: "record", Got: fmt.Sprintf("%T(nil)", r)}
	}
	v, err := Encode(r, Record(r.RecordKind()), path)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func decodeAs[R DomainRecord](v any, kind RecordKind, path Path) (R, error) {
	d, err := Decode(v, Record(kind), path)
	if err != nil {
		var zero R
		return zero, err
	}
	return d.(R), nil
}
