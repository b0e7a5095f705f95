package wire

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest(t *testing.T) {
	data, err := EncodeRequest(Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"auth","username":"alice","password":"secret"}`, string(data))

	again, err := EncodeRequest(Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")
}

func TestEncodeRequestEscapes(t *testing.T) {
	data, err := EncodeRequest(Credentials{Username: `bo"b`, Password: "p\\w\n"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"auth","username":"bo\"b","password":"p\\w\n"}`, string(data))
}

func TestEncodeRequestKeepsHTMLCharacters(t *testing.T) {
	data, err := EncodeRequest(Credentials{Username: "a&b", Password: "<x>"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"auth","username":"a&b","password":"<x>"}`, string(data))

	req, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, "<x>", req.Password)
}

func TestDecodeResponse(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		resp, err := DecodeResponse([]byte(`{"success":true}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Message)
	})

	t.Run("Rejected", func(t *testing.T) {
		resp, err := DecodeResponse([]byte(`{"success":false,"message":"bad password"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "bad password", resp.Message)
	})

	t.Run("RejectedWithoutMessage", func(t *testing.T) {
		resp, err := DecodeResponse([]byte(`{"success":false}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Empty(t, resp.Message)
	})

	t.Run("TrailingNewline", func(t *testing.T) {
		resp, err := DecodeResponse([]byte("{\"success\":true}\n"))
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("ExtraFieldsIgnored", func(t *testing.T) {
		resp, err := DecodeResponse([]byte(`{"success":true,"token":"abc","message":"welcome"}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "welcome", resp.Message)
	})
}

func TestDecodeResponseInvalid(t *testing.T) {
	cases := map[string]string{
		"binary":          "\x00\x01",
		"empty":           "",
		"whitespace":      "  \n",
		"not object":      `[true]`,
		"bare bool":       `true`,
		"missing success": `{"message":"hi"}`,
		"null success":    `{"success":null}`,
		"string success":  `{"success":"true"}`,
		"truncated":       `{"success":tr`,
		"trailing junk":   `{"success":true}{"success":false}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(payload))
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, ErrInvalidResponse), "got %v", err)
		})
	}
}

func TestRedacted(t *testing.T) {
	data, err := EncodeRequest(Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	red := string(Redacted(data))
	assert.NotContains(t, red, "secret")
	assert.Contains(t, red, `"username":"alice"`)

	assert.True(t, strings.HasPrefix(string(Redacted([]byte("garbage"))), `"<`))
}

func TestServerSideCodec(t *testing.T) {
	data, err := EncodeRequest(Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	req, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "secret", req.Password)

	_, err = DecodeRequest([]byte(`{"type":"ping"}`))
	assert.Error(t, err)

	ok, err := EncodeResponse(AuthResponse{Success: true})
	require.NoError(t, err)
	assert.Equal(t, `{"success":true}`, string(ok))

	rej, err := EncodeResponse(AuthResponse{Message: "bad password"})
	require.NoError(t, err)
	resp, err := DecodeResponse(rej)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "bad password", resp.Message)
}
