package awslambda

import (
	"encoding/json"
	"fmt"
)

// TransportError is returned when the dispatcher reports a function error.
type TransportError struct {
	Funct   string
	Kind    string // FunctionError header, "Unhandled" or "Handled"
	Type    string
	Message string
	Payload []byte
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("function %s failed (%s): %s: %s", e.Funct, e.Kind, e.Type, e.Message)
	}
	return fmt.Sprintf("function %s failed (%s): %s", e.Funct, e.Kind, string(e.Payload))
}

func newTransportError(funct, kind string, payload []byte) *TransportError {
	terr := &TransportError{Funct: funct, Kind: kind, Payload: payload}

	var body struct {
		ErrorType    string `json:"errorType"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		terr.Type = body.ErrorType
		terr.Message = body.ErrorMessage
	}
	return terr
}
