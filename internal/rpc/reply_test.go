package rpc

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResult_Success(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	view := UserView{ID: "u-1", Email: "a@x.com", FirstName: "Jo", LastName: "Do", CreatedAt: created, UpdatedAt: created}

	reply, err := EncodeResult(result.Ok(view))
	require.NoError(t, err)
	assert.Nil(t, reply.Error)
	assert.NotContains(t, string(reply.Data), "password")

	back, err := DecodeResult[UserView](reply)
	require.NoError(t, err)
	require.True(t, back.IsOk())
	assert.Equal(t, view, back.Value())
}

func TestEncodeResult_UnitIsEmptyObject(t *testing.T) {
	reply, err := EncodeResult(result.Ok(result.Unit{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{}}`, mustJSON(t, reply))
}

func TestEncodeResult_ErrorKeepsStatusCode(t *testing.T) {
	reply, err := EncodeResult(result.Fail[UserView](result.Conflict("A user with email 'a@x.com' already exists")))
	require.NoError(t, err)

	var wire Reply
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, reply)), &wire))

	back, err := DecodeResult[UserView](&wire)
	require.NoError(t, err)
	require.False(t, back.IsOk())
	assert.Equal(t, 409, back.Err().StatusCode)
	assert.Equal(t, "Email Conflict", back.Err().Title)
}

func TestDecodeResult_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply *Reply
	}{
		{"nil", nil},
		{"empty", &Reply{}},
		{"both", &Reply{Data: json.RawMessage(`{}`), Error: result.Internal("x")}},
		{"wrong type", &Reply{Data: json.RawMessage(`"str"`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResult[UserView](tt.reply)
			require.True(t, errors.Is(err, ErrMalformedReply), "got %v", err)
		})
	}
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/authgateway.v1.Authentication/change_password", FullMethod(CommandChangePassword))
	assert.Len(t, Commands, 5)
}

func TestCodec_RoundTrip(t *testing.T) {
	c := jsonCodec{}
	b, err := c.Marshal(LoginPayload{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	var raw json.RawMessage
	require.NoError(t, c.Unmarshal(b, &raw))

	var p LoginPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, CodecName, c.Name())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
