package inspect

import (
	"encoding/json"

	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/geometry"
)

type Message struct {
	Type     string          `json:"type"`
	Session  string          `json:"session,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// SessionState is what a client gets on join and from GET /sessions/{id}.
type SessionState struct {
	ID         string                   `json:"id"`
	RootID     string                   `json:"rootId"`
	Animations map[string]*flip.Event   `json:"animations"` // flipID -> latest event
	Positions  map[string]geometry.Rect `json:"positions"`
}

type SessionSummary struct {
	ID         string `json:"id"`
	RootID     string `json:"rootId"`
	Animations int    `json:"animations"`
	Watchers   int    `json:"watchers"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypeWelcome      = "welcome"
	TypeSessionState = "session.state"
	TypeError        = "error"

	// Client commands
	TypeControlPause  = "control.pause"
	TypeControlResume = "control.resume"
	TypeControlAck    = "control.ack"
)

func newMessage(typ, session string, payload interface{}) *Message {
	msg := &Message{Type: typ, Session: session}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &Message{Type: TypeError, Session: session}
		}
		msg.Payload = data
	}
	return msg
}
