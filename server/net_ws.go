package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"arenapong/game"
)

const (
	sendQueueSize = 64
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
	maxFrameSize  = 4 << 10
)

// ClientConn 一条 WebSocket 连接：读协程投递命令，写协程清空发送队列
type ClientConn struct {
	id    string
	ws    *websocket.Conn
	codec Codec
	send  chan []byte
	done  chan struct{}
	once  sync.Once
}

func NewClientConn(id string, ws *websocket.Conn, codec Codec) *ClientConn {
	return &ClientConn{
		id:    id,
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, sendQueueSize),
		done:  make(chan struct{}),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性直接丢弃，不能阻塞 Tick
		return false
	}
}

// Close 可重复调用；写协程发出关闭帧后断开底层连接
func (c *ClientConn) Close() {
	c.once.Do(func() { close(c.done) })
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.Close()
		_ = c.ws.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
				Log.Debugf("write failed conn=%s: %v", c.id, err)
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端帧并转换为会话命令；退出时通知会话移除该玩家
func (s *Server) readPump(c *ClientConn) {
	defer func() {
		s.conns.Remove(c.id)
		c.Close()
		if err := s.session.Submit(s.ctx, game.Disconnect{ConnID: c.id}); err != nil {
			Log.Debugf("disconnect not delivered conn=%s: %v", c.id, err)
		}
	}()
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Infof("conn=%s closed: %v", c.id, err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		f, err := c.codec.Decode(payload)
		if err != nil {
			Log.Debugf("malformed frame conn=%s: %v", c.id, err)
			continue
		}
		cmd, err := ToCommand(c.id, f)
		if err != nil {
			Log.Debugf("dropped frame conn=%s type=%q: %v", c.id, f.Type, err)
			continue
		}
		if _, ok := cmd.(game.Movement); ok {
			s.session.Offer(cmd)
			continue
		}
		if err := s.session.Submit(s.ctx, cmd); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：/ws?codec=json|msgpack
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	codec, err := CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(uuid.NewString(), ws, codec)
	s.conns.Add(client)
	Log.Infof("conn=%s connected from %s codec=%s", client.id, r.RemoteAddr, codec.Name())

	go client.writePump()
	if err := s.session.Submit(s.ctx, game.Connect{ConnID: client.id}); err != nil {
		s.conns.Remove(client.id)
		client.Close()
		return
	}
	go s.readPump(client)
}
