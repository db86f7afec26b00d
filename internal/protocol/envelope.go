package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrMalformed marks frames that decoded as garbage. The connection that sent
// them stays open; the caller answers with an ERROR envelope instead.
var ErrMalformed = errors.New("malformed message")

// Envelope is the uniform wire wrapper for requests, responses, and pushed
// events. Server-assigned ids increase monotonically and are never reused.
type Envelope struct {
	ID        uint64          `json:"id"`
	Version   Version         `json:"version"`
	Method    Method          `json:"method"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Sequence hands out envelope ids. It is passed explicitly to whoever builds
// envelopes rather than living in package state, so tests and multiple
// servers can run their own counters.
type Sequence struct {
	counter atomic.Uint64
}

// NewSequence returns a sequence starting at 1.
func NewSequence() *Sequence { return &Sequence{} }

// Next returns the next id. Safe for concurrent use.
func (s *Sequence) Next() uint64 { return s.counter.Add(1) }

// NewEnvelope builds an envelope for method, marshaling payload if non-nil.
func NewEnvelope(seq *Sequence, method Method, payload interface{}) (*Envelope, error) {
	env := &Envelope{
		ID:        seq.Next(),
		Version:   V1,
		Method:    method,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", method, err)
		}
		env.Payload = raw
	}
	return env, nil
}

// Encode renders the envelope as a single JSON document with no interior
// newlines, so it can ride newline-delimited framing unescaped.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses one framed message into an envelope. Errors wrap ErrMalformed
// so callers can tell a bad frame from a dead connection.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Method == "" {
		return nil, fmt.Errorf("%w: missing method", ErrMalformed)
	}
	return &env, nil
}

// DecodePayload unmarshals the payload into out, reporting the method on
// failure so handler logs stay readable.
func (e *Envelope) DecodePayload(out interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: %s: empty payload", ErrMalformed, e.Method)
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, e.Method, err)
	}
	return nil
}
