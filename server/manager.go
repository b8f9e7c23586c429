package server

import "sync"

// ConnManager 管理在线连接，并作为会话的 Transport 负责单播与广播
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*ClientConn
}

// NewConnManager 空连接表
func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*ClientConn)}
}

// Add 登记新连接
func (m *ConnManager) Add(c *ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.id] = c
}

// Remove 注销连接，不存在时忽略
func (m *ConnManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// Count 在线连接数
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Send 单播；连接已断开或队列满时丢弃
func (m *ConnManager) Send(connID, event string, payload any) {
	m.mu.RLock()
	c, ok := m.conns[connID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	b, err := c.codec.Encode(event, payload)
	if err != nil {
		Log.Errorf("encode %s for conn=%s: %v", event, connID, err)
		return
	}
	if !c.Enqueue(b) {
		Log.Debugf("send queue full, dropped %s for conn=%s", event, connID)
	}
}

// Broadcast 广播给所有连接；每种编码只序列化一次
func (m *ConnManager) Broadcast(event string, payload any) {
	m.mu.RLock()
	targets := make([]*ClientConn, 0, len(m.conns))
	for _, c := range m.conns {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	encoded := make(map[string][]byte, 2)
	failed := make(map[string]bool, 2)
	for _, c := range targets {
		name := c.codec.Name()
		if failed[name] {
			continue
		}
		b, ok := encoded[name]
		if !ok {
			var err error
			if b, err = c.codec.Encode(event, payload); err != nil {
				Log.Errorf("encode %s (%s): %v", event, name, err)
				failed[name] = true
				continue
			}
			encoded[name] = b
		}
		c.Enqueue(b)
	}
}
