// Package relaywire provides the wire layer of a mail-relay control plane:
//
// - A closed Schema model (Bool, Int, Float, Str, ListOf, MapOf, Record) driving Decode and Encode
// - The domain records Entity, Channel, ChannelsPage and Message with optional-field presence
// - Path-addressed errors (DecodeError, EncodeError) and HTTP failures (RemoteError)
// - A pluggable JSON driver (go-json by default) and a YAML front end
// - JSON Schema export of every record
//
// The HTTP callers live in control (channel administration) and relay
// (message submission). relaywiretest provides an in-memory server speaking
// both APIs.
//
// Typical usage:
//
//	tree, err := relaywire.ParseJSON(body)
//	ch, err := relaywire.DecodeChannel(tree, relaywire.Root)
//
//	wire, err := relaywire.EncodeChannel(ch, relaywire.Root)
//	body, err := relaywire.MarshalJSON(wire)
package relaywire
