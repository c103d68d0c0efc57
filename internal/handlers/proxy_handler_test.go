package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideabosque/openai-funct-base/internal/invoker"
)

func TestRemoteErrors_Message(t *testing.T) {
	errs := RemoteErrors(&invoker.RemoteQueryError{Kind: invoker.KindMessage, Payload: "Endpoint request timed out"})

	require.Len(t, errs, 1)
	assert.Equal(t, "Endpoint request timed out", errs[0].Message)
	assert.Equal(t, "REMOTE_MESSAGE", errs[0].Extensions["code"])
}

func TestRemoteErrors_Unknown(t *testing.T) {
	errs := RemoteErrors(&invoker.RemoteQueryError{Kind: invoker.KindUnknown, Payload: map[string]interface{}{"status": 1}})

	require.Len(t, errs, 1)
	assert.Equal(t, `Unknown error: {"status":1}`, errs[0].Message)
}

func TestRemoteErrors_NonListErrors(t *testing.T) {
	errs := RemoteErrors(&invoker.RemoteQueryError{Kind: invoker.KindErrors, Payload: "flat"})

	require.Len(t, errs, 1)
	assert.Equal(t, `"flat"`, errs[0].Message)
}

func TestRemoteErrors_ItemWithoutMessage(t *testing.T) {
	errs := RemoteErrors(&invoker.RemoteQueryError{
		Kind:    invoker.KindErrors,
		Payload: []interface{}{map[string]interface{}{"path": "x"}, float64(3)},
	})

	require.Len(t, errs, 2)
	assert.Equal(t, `{"path":"x"}`, errs[0].Message)
	assert.Equal(t, "3", errs[1].Message)
}
