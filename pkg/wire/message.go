package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RequestTypeAuth is the request type for credential authentication.
const RequestTypeAuth = "auth"

// Protocol errors.
var (
	// ErrInvalidResponse indicates the reply is not a valid auth response.
	ErrInvalidResponse = errors.New("invalid server response")

	// ErrEmptyResponse indicates the server sent zero bytes.
	ErrEmptyResponse = errors.New("empty server response")
)

// Credentials are the user-supplied login values for one attempt.
type Credentials struct {
	Username string
	Password string
}

// AuthRequest is the wire representation of Credentials.
type AuthRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewAuthRequest builds the request for the given credentials.
func NewAuthRequest(creds Credentials) AuthRequest {
	return AuthRequest{
		Type:     RequestTypeAuth,
		Username: creds.Username,
		Password: creds.Password,
	}
}

// AuthResponse is the server's reply.
type AuthResponse struct {
	Success bool
	Message string
}

// rawResponse keeps presence information that a plain bool loses.
type rawResponse struct {
	Success *bool   `json:"success"`
	Message *string `json:"message"`
}

// EncodeRequest serializes the auth request for creds.
// The output is deterministic: type, username, password, in that order.
// HTML characters are written literally.
func EncodeRequest(creds Credentials) ([]byte, error) {
	data, err := marshal(NewAuthRequest(creds))
	if err != nil {
		return nil, fmt.Errorf("encode auth request: %w", err)
	}
	return data, nil
}

// marshal is json.Marshal without HTML escaping or a trailing newline.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeResponse parses and validates a server reply.
// Any payload that is not a JSON object with a boolean "success" field
// yields an error wrapping ErrInvalidResponse.
func DecodeResponse(data []byte) (*AuthResponse, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, ErrEmptyResponse)
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidResponse)
	}

	var raw rawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if raw.Success == nil {
		return nil, fmt.Errorf("%w: missing success field", ErrInvalidResponse)
	}

	resp := &AuthResponse{Success: *raw.Success}
	if raw.Message != nil {
		resp.Message = *raw.Message
	}
	return resp, nil
}

// Redacted returns a copy of an encoded request with the password value
// replaced, for logging. Payloads that are not auth requests come back
// as a fixed placeholder.
func Redacted(data []byte) []byte {
	var req AuthRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Type != RequestTypeAuth {
		return []byte(`"<unparseable request>"`)
	}
	req.Password = "***"
	out, err := marshal(req)
	if err != nil {
		return []byte(`"<unparseable request>"`)
	}
	return out
}

// DecodeRequest parses an auth request. It is the server-side
// counterpart of EncodeRequest.
func DecodeRequest(data []byte) (*AuthRequest, error) {
	var req AuthRequest
	if err := json.Unmarshal(bytes.TrimSpace(data), &req); err != nil {
		return nil, fmt.Errorf("decode auth request: %w", err)
	}
	if req.Type != RequestTypeAuth {
		return nil, fmt.Errorf("decode auth request: unexpected type %q", req.Type)
	}
	return &req, nil
}

// EncodeResponse serializes a reply. The message is omitted when empty.
func EncodeResponse(resp AuthResponse) ([]byte, error) {
	out := struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}{resp.Success, resp.Message}
	data, err := marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode auth response: %w", err)
	}
	return data, nil
}
