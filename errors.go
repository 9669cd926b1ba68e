package relaywire

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/reoring/relaywire/i18n"
)

// Error codes carried by the error types of this package.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeMalformedJSON  = "malformed_json"
	CodeEncodeMismatch = "encode_mismatch"
	// Remote codes, one per RemoteClass.
	CodeRemoteForbidden       = "remote_forbidden"
	CodeRemoteNotFound        = "remote_not_found"
	CodeRemoteTooLarge        = "remote_too_large"
	CodeRemoteTooManyRequests = "remote_too_many_requests"
	CodeRemoteClientError     = "remote_client_error"
	CodeRemoteServerError     = "remote_server_error"
)

// Expected/actual markers used for missing required fields.
const (
	ExpectedPresent = "present"
	ActualMissing   = "missing"
)

// DecodeError reports that an untyped value did not match the expected
// schema. Decoding aborts on the first DecodeError; no partial record is
// returned.
type DecodeError struct {
	Path     Path
	Expected string
	Actual   string
	Cause    error // Optional: underlying parser error.
}

// Code returns the machine-readable code of the failure.
func (e *DecodeError) Code() string {
	switch {
	case e.Cause != nil:
		return CodeMalformedJSON
	case e.Actual == ActualMissing:
		return CodeRequired
	default:
		return CodeInvalidType
	}
}

func (e *DecodeError) Error() string {
	data := map[string]string{
		"path":     e.Path.Display(),
		"expected": e.Expected,
		"actual":   e.Actual,
	}
	if e.Cause != nil {
		data["cause"] = e.Cause.Error()
	}
	return "relaywire: " + i18n.T(e.Code(), data)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// EncodeError reports that a typed value does not conform to the schema it
// was encoded against. It signals a programming error in the caller.
type EncodeError struct {
	Path     Path
	Expected string
	Got      string // Go type of the offending value.
}

func (e *EncodeError) Code() string { return CodeEncodeMismatch }

func (e *EncodeError) Error() string {
	return "relaywire: " + i18n.T(CodeEncodeMismatch, map[string]string{
		"path":     e.Path.Display(),
		"expected": e.Expected,
		"got":      e.Got,
	})
}

// RemoteClass groups non-2xx statuses by the meaning the collaborator
// servers give them.
type RemoteClass int

const (
	ClassForbidden       RemoteClass = iota // 403: token does not match the descriptor.
	ClassNotFound                           // 404: unknown descriptor.
	ClassTooLarge                           // 413: body exceeds the channel's max_size.
	ClassTooManyRequests                    // 429: min_period has not elapsed.
	ClassClientError                        // any other 4xx.
	ClassServerError                        // 5xx and anything else.
)

func (c RemoteClass) String() string {
	switch c {
	case ClassForbidden:
		return "forbidden"
	case ClassNotFound:
		return "not_found"
	case ClassTooLarge:
		return "too_large"
	case ClassTooManyRequests:
		return "too_many_requests"
	case ClassClientError:
		return "client_error"
	default:
		return "server_error"
	}
}

// ClassifyStatus maps an HTTP status code to its RemoteClass.
func ClassifyStatus(status int) RemoteClass {
	switch {
	case status == http.StatusForbidden:
		return ClassForbidden
	case status == http.StatusNotFound:
		return ClassNotFound
	case status == http.StatusRequestEntityTooLarge:
		return ClassTooLarge
	case status == http.StatusTooManyRequests:
		return ClassTooManyRequests
	case status >= 400 && status < 500:
		return ClassClientError
	default:
		return ClassServerError
	}
}

// Sentinels matched by RemoteError via errors.Is.
var (
	ErrForbidden       = errors.New("relaywire: forbidden")
	ErrNotFound        = errors.New("relaywire: not found")
	ErrTooLarge        = errors.New("relaywire: request too large")
	ErrTooManyRequests = errors.New("relaywire: too many requests")
)

// RemoteError is returned for every non-2xx response. Body holds the raw
// response text as sent by the server.
type RemoteError struct {
	StatusCode int
	Body       []byte
}

// Class returns the status class of the response.
func (e *RemoteError) Class() RemoteClass { return ClassifyStatus(e.StatusCode) }

func (e *RemoteError) Code() string {
	switch e.Class() {
	case ClassForbidden:
		return CodeRemoteForbidden
	case ClassNotFound:
		return CodeRemoteNotFound
	case ClassTooLarge:
		return CodeRemoteTooLarge
	case ClassTooManyRequests:
		return CodeRemoteTooManyRequests
	case ClassClientError:
		return CodeRemoteClientError
	default:
		return CodeRemoteServerError
	}
}

func (e *RemoteError) Error() string {
	return "relaywire: " + i18n.T(e.Code(), map[string]string{
		"status": strconv.Itoa(e.StatusCode),
		"body":   string(e.Body),
	})
}

// Is matches the class sentinels.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrForbidden:
		return e.Class() == ClassForbidden
	case ErrNotFound:
		return e.Class() == ClassNotFound
	case ErrTooLarge:
		return e.Class() == ClassTooLarge
	case ErrTooManyRequests:
		return e.Class() == ClassTooManyRequests
	}
	return false
}

// AsDecodeError extracts a *DecodeError from err using errors.As.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AsEncodeError extracts an *EncodeError from err using errors.As.
func AsEncodeError(err error) (*EncodeError, bool) {
	var ee *EncodeError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// AsRemoteError extracts a *RemoteError from err using errors.As.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
