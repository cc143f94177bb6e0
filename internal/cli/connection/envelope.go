package connection

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
)

// maxBodySize caps how much of a response body is decoded.
const maxBodySize = 4 << 20

// Envelope is the backend response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BackendMessage returns the message the backend reported, if any.
func (e *Envelope) BackendMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ParseEnvelope decodes a response envelope and its data into target,
// closing the body.
//
// A response with success=false or an error status maps to
// domain.ErrBackend carrying the backend message as details. Undecodable
// bodies map to domain.ErrBadResponse.
func ParseEnvelope(resp *http.Response, target any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.ErrNetwork.WithDetails("read response").WithCause(err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return domain.ErrBackend.WithDetails(fmt.Sprintf("request failed with status %d", resp.StatusCode))
		}
		return domain.ErrBadResponse.WithCause(err)
	}

	if !env.Success || resp.StatusCode >= 400 {
		msg := env.BackendMessage()
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return domain.ErrBackend.WithDetails(msg)
	}

	if target != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return domain.ErrBadResponse.WithCause(err)
		}
	}
	return nil
}
