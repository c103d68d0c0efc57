package invoker

import (
	"encoding/json"
	"fmt"

	"github.com/ideabosque/openai-funct-base/internal/config"
	"github.com/ideabosque/openai-funct-base/internal/metrics"
)

// DecodeReply applies the two JSON decode passes a dispatcher reply needs:
// the payload is a JSON string whose content is the reply document. The
// document is usually an object; other JSON values are returned as is and
// classify as unknown.
func DecodeReply(payload []byte) (interface{}, error) {
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		return nil, &DecodeError{Stage: 1, Err: err}
	}

	var reply interface{}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, &DecodeError{Stage: 2, Err: err}
	}
	if reply == nil {
		return nil, &DecodeError{Stage: 2, Err: fmt.Errorf("reply is null")}
	}
	return reply, nil
}

// classify picks the outcome of a decoded reply, checking data, errors and
// message in that order. It returns the data value on success.
func classify(function string, reply interface{}, check string) (interface{}, string, error) {
	doc, isObject := reply.(map[string]interface{})
	if !isObject {
		return nil, metrics.OutcomeUnknown, &RemoteQueryError{Function: function, Kind: KindUnknown, Payload: reply}
	}
	if v, ok := lookup(doc, "data", check); ok {
		return v, metrics.OutcomeData, nil
	}
	if v, ok := lookup(doc, "errors", check); ok {
		return nil, metrics.OutcomeErrors, &RemoteQueryError{Function: function, Kind: KindErrors, Payload: v}
	}
	if v, ok := lookup(doc, "message", check); ok {
		return nil, metrics.OutcomeMessage, &RemoteQueryError{Function: function, Kind: KindMessage, Payload: v}
	}
	return nil, metrics.OutcomeUnknown, &RemoteQueryError{Function: function, Kind: KindUnknown, Payload: reply}
}

func lookup(reply map[string]interface{}, key, check string) (interface{}, bool) {
	v, ok := reply[key]
	if !ok {
		return nil, false
	}
	if check == config.ReplyCheckTruthy && !truthy(v) {
		return nil, false
	}
	return v, true
}

// truthy follows the usual dynamic-language notion: null, false, zero,
// empty strings and empty collections are false.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}
