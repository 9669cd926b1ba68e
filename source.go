package relaywire

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// JSONDriver turns wire bytes into the untyped tree consumed by Decode and
// serializes trees produced by Encode. Parse must keep numbers as
// json.Number so integers and floats stay distinguishable.
type JSONDriver interface {
	Parse(data []byte) (any, error)
	Marshal(tree any) ([]byte, error)
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json backed driver.
func UseDefaultJSONDriver() { SetJSONDriver(goJSONDriver{}) }

// CurrentJSONDriver returns the driver in use.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// ParseJSON parses a single JSON document into an untyped tree. Syntax
// errors and trailing data surface as a *DecodeError with code
// malformed_json.
func ParseJSON(data []byte) (any, error) {
	v, err := CurrentJSONDriver().Parse(data)
	if err != nil {
		return nil, &DecodeError{Path: Root, Expected: "json", Actual: "malformed", Cause: err}
	}
	return v, nil
}

// MarshalJSON serializes a tree produced by Encode.
func MarshalJSON(tree any) ([]byte, error) { return CurrentJSONDriver().Marshal(tree) }

var errTrailingData = errors.New("trailing data after top-level value")

// goJSONDriver is backed by github.com/goccy/go-json.
type goJSONDriver struct{}

func (goJSONDriver) Parse(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

func (goJSONDriver) Marshal(tree any) ([]byte, error) { return gojson.Marshal(tree) }
func (goJSONDriver) Name() string                     { return "go-json" }

// StdJSONDriver returns a driver backed by encoding/json.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

type stdJSONDriver struct{}

func (stdJSONDriver) Parse(data []byte) (any, error) {
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errTrailingData
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

func (stdJSONDriver) Marshal(tree any) ([]byte, error) { return stdjson.Marshal(tree) }
func (stdJSONDriver) Name() string                     { return "encoding/json" }
