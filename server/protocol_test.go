package server

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"arenapong/game"
)

func msgpackFrame(t *testing.T, v any) []byte {
	t.Helper()
	b, err := msgpack.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestJSONAndMsgpackDecodeToSameCommand(t *testing.T) {
	cases := []struct {
		name    string
		json    string
		msgpack map[string]any
		want    any
	}{
		{
			name:    "username string",
			json:    `{"type":"setUsername","data":"alice"}`,
			msgpack: map[string]any{"type": "setUsername", "data": "alice"},
			want:    game.SetUsername{ConnID: "c1", Username: "alice"},
		},
		{
			name:    "username object",
			json:    `{"type":"setUsername","data":{"username":"bob"}}`,
			msgpack: map[string]any{"type": "setUsername", "data": map[string]any{"username": "bob"}},
			want:    game.SetUsername{ConnID: "c1", Username: "bob"},
		},
		{
			name:    "movement",
			json:    `{"type":"playerMovement","data":{"x":0,"y":-7.5}}`,
			msgpack: map[string]any{"type": "playerMovement", "data": map[string]any{"x": 0, "y": -7.5}},
			want:    game.Movement{ConnID: "c1", Delta: game.Vec{X: 0, Y: -7.5}},
		},
		{
			name:    "ready",
			json:    `{"type":"playerReady"}`,
			msgpack: map[string]any{"type": "playerReady"},
			want:    game.PlayerReady{ConnID: "c1"},
		},
		{
			name:    "start",
			json:    `{"type":"startGame","data":null}`,
			msgpack: map[string]any{"type": "startGame", "data": nil},
			want:    game.StartGame{ConnID: "c1"},
		},
	}
	for _, tc := range cases {
		jf, err := JSON.Decode([]byte(tc.json))
		if err != nil {
			t.Fatalf("%s: json decode: %v", tc.name, err)
		}
		mf, err := Msgpack.Decode(msgpackFrame(t, tc.msgpack))
		if err != nil {
			t.Fatalf("%s: msgpack decode: %v", tc.name, err)
		}
		jc, err := ToCommand("c1", jf)
		if err != nil {
			t.Fatalf("%s: json command: %v", tc.name, err)
		}
		mc, err := ToCommand("c1", mf)
		if err != nil {
			t.Fatalf("%s: msgpack command: %v", tc.name, err)
		}
		if jc != tc.want || mc != tc.want {
			t.Fatalf("%s: json=%#v msgpack=%#v want %#v", tc.name, jc, mc, tc.want)
		}
	}
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	if _, err := JSON.Decode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("empty frame err = %v", err)
	}
	if _, err := JSON.Decode([]byte("{not json")); err == nil {
		t.Fatal("malformed json accepted")
	}
	if _, err := Msgpack.Decode([]byte{0xc1}); err == nil {
		t.Fatal("malformed msgpack accepted")
	}

	f, _ := JSON.Decode([]byte(`{"type":"fly","data":1}`))
	if _, err := ToCommand("c1", f); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("unknown event err = %v", err)
	}
	f, _ = JSON.Decode([]byte(`{"type":"playerMovement"}`))
	if _, err := ToCommand("c1", f); err == nil {
		t.Fatal("movement without payload accepted")
	}
	f, _ = JSON.Decode([]byte(`{"type":"setUsername","data":42}`))
	if _, err := ToCommand("c1", f); err == nil {
		t.Fatal("numeric username accepted")
	}
}

func TestMsgpackUsesJSONFieldNames(t *testing.T) {
	snap := game.PlayerSnapshot{ID: "c1", Username: "alice", Position: game.Vec{X: 1, Y: 2}, IsMoving: true}
	b, err := Msgpack.Encode(game.EvCurrentPlayers, []game.PlayerSnapshot{snap})
	if err != nil {
		t.Fatal(err)
	}
	var env struct {
		Type string           `msgpack:"type"`
		Data []map[string]any `msgpack:"data"`
	}
	if err := msgpack.NewDecoder(bytes.NewReader(b)).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Type != game.EvCurrentPlayers || len(env.Data) != 1 {
		t.Fatalf("envelope = %+v", env)
	}
	p := env.Data[0]
	if p["username"] != "alice" || p["isMoving"] != true {
		t.Fatalf("player = %v", p)
	}
	pos, ok := p["position"].(map[string]any)
	if !ok || pos["y"] != 2.0 {
		t.Fatalf("position = %#v", p["position"])
	}
}

func TestCodecByName(t *testing.T) {
	for name, want := range map[string]int{"": websocket.TextMessage, "json": websocket.TextMessage, "msgpack": websocket.BinaryMessage} {
		c, err := CodecByName(name)
		if err != nil || c.FrameType() != want {
			t.Fatalf("CodecByName(%q) = %v, %v", name, c, err)
		}
	}
	if _, err := CodecByName("xml"); !errors.Is(err, ErrUnknownCodec) {
		t.Fatalf("err = %v", err)
	}
}
