// Package protocol answers a host's queries about the loaded graph.
//
// Messages are envelopes with a head naming sender, receiver and message
// id. Requests use the db_* types; each answer is a db_response whose
// refs.cause is the request head. Whenever a graph loads the server
// announces it with db_initialized.
package protocol

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Message types.
const (
	TypeGet         = "db_get"
	TypeHas         = "db_has"
	TypeIsEmpty     = "db_is_empty"
	TypeRoot        = "db_root"
	TypeKeys        = "db_keys"
	TypeRaw         = "db_raw"
	TypeResponse    = "db_response"
	TypeInitialized = "db_initialized"
)

// ErrUnknownMessage is returned for a message that is not a db_* request.
// It points at a broken peer rather than bad data.
var ErrUnknownMessage = errors.New("unknown message type")

// Head identifies a message. It travels as the array [by, to, mid].
type Head struct {
	By  string
	To  string
	Mid uint64
}

// MarshalJSON encodes h as [by, to, mid].
func (h Head) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{h.By, h.To, h.Mid})
}

// UnmarshalJSON decodes [by, to, mid].
func (h *Head) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("decoding head: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("decoding head: want 3 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &h.By); err != nil {
		return fmt.Errorf("decoding head sender: %w", err)
	}
	if err := json.Unmarshal(parts[1], &h.To); err != nil {
		return fmt.Errorf("decoding head receiver: %w", err)
	}
	if err := json.Unmarshal(parts[2], &h.Mid); err != nil {
		return fmt.Errorf("decoding head id: %w", err)
	}
	return nil
}

// Refs links a message to the ones it answers.
type Refs struct {
	Cause *Head `json:"cause,omitempty"`
}

// Envelope is one protocol message.
type Envelope struct {
	Head Head            `json:"head"`
	Refs Refs            `json:"refs"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PathParams is the data of db_get and db_has.
type PathParams struct {
	Path string `json:"path"`
}

// Response is the data of db_response.
type Response struct {
	Result json.RawMessage `json:"result"`
}

// Initialized is the data of db_initialized.
type Initialized struct {
	Entries json.RawMessage `json:"entries"`
}

// Request builds a request envelope.
func Request(head Head, typ string, params any) (Envelope, error) {
	env := Envelope{Head: head, Type: typ}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return Envelope{}, fmt.Errorf("encoding %s params: %w", typ, err)
		}
		env.Data = data
	}
	return env, nil
}

// Result decodes the result of a db_response into v.
func (e Envelope) Result(v any) error {
	if e.Type != TypeResponse {
		return fmt.Errorf("%w: %q is not a response", ErrUnknownMessage, e.Type)
	}
	var r Response
	if err := json.Unmarshal(e.Data, &r); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(r.Result) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(r.Result, v)
}
