package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"arenapong/game"
)

var (
	ErrEmptyFrame   = errors.New("empty frame")
	ErrUnknownEvent = errors.New("unknown event")
	ErrUnknownCodec = errors.New("unknown codec")
)

// Envelope 出站消息：{"type": 事件名, "data": 载荷}
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Frame 解码后的入站帧，Data 仍保持连接所用的编码，按事件再解析
type Frame struct {
	Type  string
	data  []byte
	codec Codec
}

// Codec 一种线上编码：JSON 走文本帧，msgpack 走二进制帧
type Codec interface {
	Name() string
	FrameType() int
	Encode(event string, payload any) ([]byte, error)
	Decode(b []byte) (Frame, error)
	unmarshal(b []byte, v any) error
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName 连接参数 ?codec= 的取值，空串为 JSON
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string   { return "json" }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Type: event, Data: payload})
}

func (c jsonCodec) Decode(b []byte) (Frame, error) {
	if len(b) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	var in struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return Frame{}, err
	}
	return Frame{Type: in.Type, data: in.Data, codec: c}, nil
}

func (jsonCodec) unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

// msgpackCodec 复用 json 标签，两种编码的字段名保持一致
type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return "msgpack" }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(event string, payload any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Envelope{Type: event, Data: payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c msgpackCodec) Decode(b []byte) (Frame, error) {
	if len(b) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	var in struct {
		Type string             `json:"type"`
		Data msgpack.RawMessage `json:"data"`
	}
	if err := c.unmarshal(b, &in); err != nil {
		return Frame{}, err
	}
	return Frame{Type: in.Type, data: in.Data, codec: c}, nil
}

func (msgpackCodec) unmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// DecodePayload 按目标类型解析帧的载荷
func DecodePayload[T any](f Frame) (T, error) {
	var out T
	if len(f.data) == 0 {
		return out, fmt.Errorf("empty payload for %q", f.Type)
	}
	err := f.codec.unmarshal(f.data, &out)
	return out, err
}

// ToCommand 把入站帧翻译成会话命令
func ToCommand(connID string, f Frame) (any, error) {
	switch f.Type {
	case game.EvSetUsername:
		name, err := decodeUsername(f)
		if err != nil {
			return nil, err
		}
		return game.SetUsername{ConnID: connID, Username: name}, nil
	case game.EvPlayerReady:
		return game.PlayerReady{ConnID: connID}, nil
	case game.EvStartGame:
		return game.StartGame{ConnID: connID}, nil
	case game.EvPlayerMovement:
		d, err := DecodePayload[game.Vec](f)
		if err != nil {
			return nil, err
		}
		return game.Movement{ConnID: connID, Delta: d}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, f.Type)
}

// decodeUsername 载荷可以是字符串，也可以是 {"username": "..."}
func decodeUsername(f Frame) (string, error) {
	if name, err := DecodePayload[string](f); err == nil {
		return name, nil
	}
	obj, err := DecodePayload[struct {
		Username string `json:"username"`
	}](f)
	if err != nil {
		return "", err
	}
	return obj.Username, nil
}
