// Package ws exposes the chat core over a websocket connection. It
// translates the JSON envelope protocol into session lifecycle calls
// and outbound events back into wire frames.
package ws

import (
	"encoding/json"

	"campus-chat/domain/event"
)

// Envelope is the wire frame for both directions:
// {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names. Connect and disconnect are implicit from the
// socket itself.
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
	EventLogout      = "logout"
)

type joinPayload struct {
	Nickname string `json:"nickname"`
}

type sendMessagePayload struct {
	Message string `json:"message"`
}

// Encode frames an outbound event for the wire.
func Encode(e event.Outbound) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name(), Data: data})
}

// Decode parses one inbound frame.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	return env, err
}
