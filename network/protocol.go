// network/protocol.go
package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rihaans/GameHub/models"
)

// Envelope type discriminants. Every message on the wire is a JSON object
// tagged by "type".
const (
	TypeWelcome = "welcome"
	TypeCreate  = "create"
	TypeJoin    = "join"
	TypeReady   = "ready"
	TypeAction  = "action"
	TypeError   = "error"
	TypeState   = "state"
	TypeLeft    = "left"
)

// ErrMalformedEnvelope covers non-JSON payloads, missing required fields and
// unknown type tags. The offending connection gets an error envelope back;
// the connection itself stays open.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// ClientEnvelope is the inbound tagged union. Fields beyond the ones the
// tagged type requires are ignored for forward compatibility.
type ClientEnvelope struct {
	Type     string          `json:"type"`
	GameType string          `json:"game_type,omitempty"`
	RoomID   string          `json:"room_id,omitempty"`
	Ready    bool            `json:"ready,omitempty"`
	Action   string          `json:"action,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// DecodeClient parses and validates one inbound envelope.
func DecodeClient(raw []byte) (*ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedEnvelope)
	}

	switch env.Type {
	case TypeCreate:
		if env.GameType == "" {
			return nil, fmt.Errorf("%w: create requires game_type", ErrMalformedEnvelope)
		}
	case TypeJoin:
		if env.RoomID == "" {
			return nil, fmt.Errorf("%w: join requires room_id", ErrMalformedEnvelope)
		}
	case TypeReady:
		// ready defaults to false when omitted
	case TypeAction:
		if env.Action == "" {
			return nil, fmt.Errorf("%w: action requires an action name", ErrMalformedEnvelope)
		}
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEnvelope)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedEnvelope, env.Type)
	}

	return &env, nil
}

// WelcomeEnvelope is sent once per connection, immediately after the player
// identity is assigned.
type WelcomeEnvelope struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

// ErrorEnvelope reports a rejected operation to the offending connection
// only. Code carries the taxonomy name (RoomNotFound, InvalidState, ...);
// Message is human-readable.
type ErrorEnvelope struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// LeftEnvelope notifies remaining members that a player left their room.
type LeftEnvelope struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// StateEnvelope is the authoritative room snapshot broadcast to every member
// whenever room state changes. Players are listed in join order. Game holds
// whatever the game-type handler exposes; the server core does not interpret
// it. Reason is set only on the terminal Finished snapshot.
type StateEnvelope struct {
	Type    string              `json:"type"`
	RoomID  string              `json:"room_id"`
	Phase   string              `json:"phase"`
	Players []models.PlayerInfo `json:"players"`
	Game    json.RawMessage     `json:"game,omitempty"`
	Reason  string              `json:"reason,omitempty"`
}

func NewWelcome(playerID string) WelcomeEnvelope {
	return WelcomeEnvelope{Type: TypeWelcome, PlayerID: playerID}
}

func NewError(code, message string) ErrorEnvelope {
	return ErrorEnvelope{Type: TypeError, Code: code, Message: message}
}

func NewLeft(roomID, playerID string) LeftEnvelope {
	return LeftEnvelope{Type: TypeLeft, RoomID: roomID, PlayerID: playerID}
}

// Encode marshals a server envelope for the wire.
func Encode(env interface{}) []byte {
	data, err := json.Marshal(env)
	if err != nil {
		// server envelopes are plain structs; this cannot fail at runtime
		panic("network: failed to marshal envelope: " + err.Error())
	}
	return data
}
