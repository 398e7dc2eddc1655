package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/viewmodel"
)

const (
	ActionSessionNew    = "session:new"
	ActionSessionResume = "session:resume"
	ActionGamePlay      = "game:play"
	ActionGameJump      = "game:jump"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	SessionID string              `json:"session_id,omitempty"`
	Cell      *int                `json:"cell,omitempty"`
	Step      *int                `json:"step,omitempty"`
	Game      *viewmodel.GameView `json:"game,omitempty"`
	Applied   *bool               `json:"applied,omitempty"`
	Error     string              `json:"error,omitempty"`
}

type connection struct {
	*websocket.Conn

	sessionID   string
	ownsSession bool
}

func (that *connection) sendMessage(action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = that.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendError(action, reason string) error {
	return that.sendMessage(action, Payload{Error: reason})
}
