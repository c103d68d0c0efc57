package invoker

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSchemaCacheDisabled is returned by schema-backed operations on an
// invoker built without CacheSchema.
var ErrSchemaCacheDisabled = errors.New("schema cache is disabled")

// Reply kinds carried by RemoteQueryError.
const (
	KindErrors  = "errors"
	KindMessage = "message"
	KindUnknown = "unknown"
)

// RemoteQueryError is returned when the decoded reply signals a failure or
// has no recognizable shape.
type RemoteQueryError struct {
	Function string
	Kind     string
	// Payload is the errors value, the message value, or the whole reply
	// for KindUnknown.
	Payload interface{}
}

func (e *RemoteQueryError) Error() string {
	switch e.Kind {
	case KindMessage:
		if s, ok := e.Payload.(string); ok {
			return s
		}
		return render(e.Payload)
	case KindUnknown:
		return "Unknown error: " + render(e.Payload)
	default:
		return render(e.Payload)
	}
}

// DecodeError is returned when a reply payload cannot be decoded. Stage is 1
// for the outer JSON string and 2 for the document it contains.
type DecodeError struct {
	Stage int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode reply (pass %d): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func render(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
