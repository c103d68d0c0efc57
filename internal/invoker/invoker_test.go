package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideabosque/openai-funct-base/internal/config"
	"github.com/ideabosque/openai-funct-base/internal/schema"
)

type call struct {
	endpointID string
	funct      string
	params     map[string]interface{}
}

// fakeTransport replies with a double-encoded document per call.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []call
	replies []string
	err     error
}

func (f *fakeTransport) Invoke(_ context.Context, endpointID, funct string, params interface{}) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{endpointID: endpointID, funct: funct, params: params.(map[string]interface{})})
	if f.err != nil {
		return nil, f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return json.Marshal(reply)
}

func newInvoker(t *testing.T, opts Options, replies ...string) (*RemoteQueryInvoker, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{replies: replies}
	return New(tr, opts), tr
}

func TestExecuteQuery_Data(t *testing.T) {
	inv, tr := newInvoker(t, Options{PerCallEndpoint: true}, `{"data": {"x": 1}}`)

	data, err := inv.ExecuteQuery(context.Background(), "openai", "f", "query{x}", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"x": float64(1)}, data)

	require.Len(t, tr.calls, 1)
	assert.Equal(t, "openai", tr.calls[0].endpointID)
	assert.Equal(t, "f", tr.calls[0].funct)
	assert.Equal(t, "query{x}", tr.calls[0].params["query"])
	assert.Equal(t, map[string]interface{}{}, tr.calls[0].params["variables"])
}

func TestExecuteQuery_NilVariablesBecomeEmpty(t *testing.T) {
	inv, tr := newInvoker(t, Options{PerCallEndpoint: true}, `{"data": {}}`)

	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "query{x}", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, tr.calls[0].params["variables"])
}

func TestExecuteQuery_Errors(t *testing.T) {
	inv, _ := newInvoker(t, Options{PerCallEndpoint: true}, `{"errors": ["bad field"]}`)

	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "query{y}", nil)
	var rqe *RemoteQueryError
	require.True(t, errors.As(err, &rqe))
	assert.Equal(t, KindErrors, rqe.Kind)
	assert.Equal(t, []interface{}{"bad field"}, rqe.Payload)
	assert.Equal(t, `["bad field"]`, err.Error())
}

func TestExecuteQuery_Message(t *testing.T) {
	inv, _ := newInvoker(t, Options{PerCallEndpoint: true}, `{"message": "Internal server error"}`)

	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "query{y}", nil)
	var rqe *RemoteQueryError
	require.True(t, errors.As(err, &rqe))
	assert.Equal(t, KindMessage, rqe.Kind)
	assert.Equal(t, "Internal server error", err.Error())
}

func TestExecuteQuery_Unknown(t *testing.T) {
	inv, _ := newInvoker(t, Options{PerCallEndpoint: true}, `{"status": "ok"}`)

	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "query{y}", nil)
	var rqe *RemoteQueryError
	require.True(t, errors.As(err, &rqe))
	assert.Equal(t, KindUnknown, rqe.Kind)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, rqe.Payload)
	assert.Contains(t, err.Error(), `"status":"ok"`)
}

func TestExecuteQuery_Priority(t *testing.T) {
	inv, _ := newInvoker(t, Options{PerCallEndpoint: true}, `{"data": {"a": 1}, "errors": ["e"], "message": "m"}`)

	data, err := inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, data)

	inv, _ = newInvoker(t, Options{PerCallEndpoint: true}, `{"errors": ["e"], "message": "m"}`)
	_, err = inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	var rqe *RemoteQueryError
	require.True(t, errors.As(err, &rqe))
	assert.Equal(t, KindErrors, rqe.Kind)
}

func TestExecuteQuery_ReplyCheck(t *testing.T) {
	reply := `{"data": null, "errors": [{"message": "denied"}]}`

	inv, _ := newInvoker(t, Options{PerCallEndpoint: true, ReplyCheck: config.ReplyCheckPresence}, reply)
	data, err := inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	inv, _ = newInvoker(t, Options{PerCallEndpoint: true, ReplyCheck: config.ReplyCheckTruthy}, reply)
	_, err = inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	var rqe *RemoteQueryError
	require.True(t, errors.As(err, &rqe))
	assert.Equal(t, KindErrors, rqe.Kind)
}

func TestExecuteQuery_TransportErrorUnchanged(t *testing.T) {
	boom := errors.New("AccessDeniedException")
	inv := New(&fakeTransport{err: boom}, Options{PerCallEndpoint: true})

	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	assert.Same(t, boom, err)
	assert.False(t, IsRemoteQueryError(err))
}

type rawTransport []byte

func (r rawTransport) Invoke(context.Context, string, string, interface{}) ([]byte, error) {
	return r, nil
}

func TestExecuteQuery_DecodeErrors(t *testing.T) {
	inv := New(rawTransport(`{"data": {}}`), Options{PerCallEndpoint: true})
	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 1, derr.Stage)

	inv = New(rawTransport(`"not json"`), Options{PerCallEndpoint: true})
	_, err = inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 2, derr.Stage)
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestExecuteQuery_FixedEndpoint(t *testing.T) {
	inv, tr := newInvoker(t, Options{EndpointID: "fixed"}, `{"data": {}}`)

	_, err := inv.ExecuteQuery(context.Background(), "ignored", "f", "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", tr.calls[0].endpointID)
}

func TestDecodeReply_RoundTrip(t *testing.T) {
	original := map[string]interface{}{
		"data": map[string]interface{}{"items": []interface{}{"a", "b"}, "n": float64(2)},
	}
	inner, err := json.Marshal(original)
	require.NoError(t, err)
	outer, err := json.Marshal(string(inner))
	require.NoError(t, err)

	reply, err := DecodeReply(outer)
	require.NoError(t, err)
	assert.Equal(t, original, reply)
}

func TestDecodeReply_Null(t *testing.T) {
	_, err := DecodeReply([]byte(`"null"`))
	var derr *DecodeError
	assert.True(t, errors.As(err, &derr))
}

func TestExecuteQuery_NonObjectReplyIsUnknown(t *testing.T) {
	inv := New(rawTransport(`"[\"data\"]"`), Options{PerCallEndpoint: true})

	_, err := inv.ExecuteQuery(context.Background(), "e", "f", "q", nil)
	var rqe *RemoteQueryError
	require.True(t, errors.As(err, &rqe))
	assert.Equal(t, KindUnknown, rqe.Kind)
	assert.Equal(t, []interface{}{"data"}, rqe.Payload)
	assert.Equal(t, `Unknown error: ["data"]`, rqe.Error())
}

func TestTruthy(t *testing.T) {
	for _, v := range []interface{}{nil, false, float64(0), "", []interface{}{}, map[string]interface{}{}} {
		assert.False(t, truthy(v), "%#v", v)
	}
	for _, v := range []interface{}{true, float64(1), "x", []interface{}{1}, map[string]interface{}{"a": 1}} {
		assert.True(t, truthy(v), "%#v", v)
	}
}

const introspectionReply = `{"data": {"__schema": {
	"queryType": {"name": "Query"},
	"mutationType": null,
	"subscriptionType": null,
	"types": [
		{"kind": "OBJECT", "name": "Query", "fields": [
			{"name": "ping", "args": [{"name": "name", "type": {"kind": "SCALAR", "name": "String"}}], "type": {"kind": "SCALAR", "name": "String"}}
		]},
		{"kind": "SCALAR", "name": "String"}
	]
}}}`

func TestGetSchema_CachedPerFunction(t *testing.T) {
	inv, tr := newInvoker(t, Options{PerCallEndpoint: true, CacheSchema: true}, introspectionReply)

	first, err := inv.GetSchema(context.Background(), "e", "f")
	require.NoError(t, err)
	second, err := inv.GetSchema(context.Background(), "e", "f")
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.Len(t, tr.calls, 1)
	assert.Equal(t, schema.IntrospectionQuery, tr.calls[0].params["query"])
}

func TestGetSchema_Disabled(t *testing.T) {
	inv, _ := newInvoker(t, Options{PerCallEndpoint: true}, introspectionReply)

	_, err := inv.GetSchema(context.Background(), "e", "f")
	assert.ErrorIs(t, err, ErrSchemaCacheDisabled)

	_, err = inv.ExecuteOperation(context.Background(), "e", "f", "ping", "query", nil)
	assert.ErrorIs(t, err, ErrSchemaCacheDisabled)
}

func TestExecuteOperation(t *testing.T) {
	inv, tr := newInvoker(t, Options{PerCallEndpoint: true, CacheSchema: true},
		introspectionReply, `{"data": {"ping": "pong"}}`)

	for i := 0; i < 2; i++ {
		data, err := inv.ExecuteOperation(context.Background(), "e", "f", "ping", "query", map[string]interface{}{"name": "n"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"ping": "pong"}, data)
	}

	// one introspection, two operations
	require.Len(t, tr.calls, 3)
	query := tr.calls[1].params["query"].(string)
	assert.Contains(t, query, "query ping")
	assert.Contains(t, query, "$name: String")
	assert.Equal(t, map[string]interface{}{"name": "n"}, tr.calls[1].params["variables"])
}

func TestExecuteOperation_UnknownOperation(t *testing.T) {
	inv, _ := newInvoker(t, Options{PerCallEndpoint: true, CacheSchema: true}, introspectionReply)

	_, err := inv.ExecuteOperation(context.Background(), "e", "f", "pong", "query", nil)
	assert.ErrorIs(t, err, schema.ErrOperationNotFound)
}
