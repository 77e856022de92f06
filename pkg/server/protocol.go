package server

import (
	"encoding/json"
	"strings"

	"github.com/vango-dev/vbind/internal/errors"
)

// Message types.
const (
	TypeInput  = "input"
	TypeEvent  = "event"
	TypeRender = "render"
	TypeError  = "error"
	TypeReload = "reload"
)

// ClientMessage is a message sent by the browser.
type ClientMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value,omitempty"`
	Event string `json:"event,omitempty"`
}

// RenderMessage carries the current body markup.
type RenderMessage struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// ErrorMessage reports a failure to the browser.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReloadMessage asks the browser to load the page again.
type ReloadMessage struct {
	Type string `json:"type"`
}

// DecodeClientMessage parses and validates a client message.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return m, errors.New("E040").Wrap(err)
	}
	if m.ID == "" {
		return m, errors.New("E040").WithDetail("message has no node id")
	}

	switch m.Type {
	case TypeInput:
	case TypeEvent:
		m.Event = strings.TrimSpace(m.Event)
		if m.Event == "" {
			return m, errors.New("E040").WithDetail("event message has no event name")
		}
	default:
		return m, errors.New("E040").WithDetailf("unknown message type %q", m.Type)
	}
	return m, nil
}

// newErrorMessage converts err for the browser. Uncoded errors are sent
// as E000.
func newErrorMessage(err error) ErrorMessage {
	e := errors.FromError(err, "")
	if e.Code == "" {
		return ErrorMessage{Type: TypeError, Code: "E000", Message: err.Error()}
	}
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return ErrorMessage{Type: TypeError, Code: e.Code, Message: msg}
}
