package network

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeClient_Create(t *testing.T) {
	env, err := DecodeClient([]byte(`{"type":"create","game_type":"counter"}`))
	if err != nil {
		t.Fatalf("DecodeClient returned error: %v", err)
	}
	if env.Type != TypeCreate {
		t.Errorf("Expected type %q, got %q", TypeCreate, env.Type)
	}
	if env.GameType != "counter" {
		t.Errorf("Expected game_type counter, got %q", env.GameType)
	}
}

func TestDecodeClient_Action(t *testing.T) {
	env, err := DecodeClient([]byte(`{"type":"action","action":"choose","data":{"move":"rock"}}`))
	if err != nil {
		t.Fatalf("DecodeClient returned error: %v", err)
	}
	if env.Action != "choose" {
		t.Errorf("Expected action choose, got %q", env.Action)
	}

	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal action data: %v", err)
	}
	if data["move"] != "rock" {
		t.Errorf("Expected move rock, got %q", data["move"])
	}
}

func TestDecodeClient_UnknownFieldsIgnored(t *testing.T) {
	env, err := DecodeClient([]byte(`{"type":"join","room_id":"r1","future_field":42}`))
	if err != nil {
		t.Fatalf("Unknown top-level fields must be ignored, got error: %v", err)
	}
	if env.RoomID != "r1" {
		t.Errorf("Expected room_id r1, got %q", env.RoomID)
	}
}

func TestDecodeClient_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `this is not json`},
		{"missing type", `{"room_id":"r1"}`},
		{"unknown type", `{"type":"teleport"}`},
		{"create without game_type", `{"type":"create"}`},
		{"join without room_id", `{"type":"join"}`},
		{"action without name", `{"type":"action","data":{}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeClient([]byte(tc.raw))
			if !errors.Is(err, ErrMalformedEnvelope) {
				t.Errorf("Expected ErrMalformedEnvelope, got %v", err)
			}
		})
	}
}

func TestEncode_ErrorEnvelope(t *testing.T) {
	payload := Encode(NewError("RoomNotFound", "room not found"))

	var decoded map[string]string
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Encode produced invalid JSON: %v", err)
	}
	if decoded["type"] != TypeError {
		t.Errorf("Expected type error, got %q", decoded["type"])
	}
	if decoded["code"] != "RoomNotFound" {
		t.Errorf("Expected code RoomNotFound, got %q", decoded["code"])
	}
}
