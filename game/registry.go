package game

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// usernameRule 1-16 位 ASCII 字母或数字
const usernameRule = "required,max=16,alphanum"

// ReadyState 准备阶段的判定结果
type ReadyState int

const (
	AllReady ReadyState = iota
	WaitingForReadyPlayers
	WaitingForMinimum
	GameAlreadyStarted
)

// ReadyOutcome SetReady 的结果；Missing 为还差的人数
type ReadyOutcome struct {
	State   ReadyState
	Missing int
}

// Registry 连接 -> 玩家的唯一所有者。players 保持加入顺序，下标即槽位
type Registry struct {
	layout   Layout
	players  []*Player
	byConn   map[string]*Player
	validate *validator.Validate
}

// NewRegistry 创建空注册表
func NewRegistry(layout Layout) *Registry {
	return &Registry{
		layout:   layout,
		players:  make([]*Player, 0, layout.MaxPlayers),
		byConn:   make(map[string]*Player),
		validate: validator.New(),
	}
}

// ValidateUsername 校验用户名格式
func (r *Registry) ValidateUsername(name string) error {
	if err := r.validate.Var(name, usernameRule); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	return nil
}

// Join 新玩家加入：槽位 = 当前人数（加入顺序）
func (r *Registry) Join(connID, username string) (*Player, error) {
	if _, ok := r.byConn[connID]; ok {
		return nil, ErrAlreadyJoined
	}
	if len(r.players) >= r.layout.MaxPlayers {
		return nil, ErrLobbyFull
	}
	if err := r.ValidateUsername(username); err != nil {
		return nil, err
	}
	for _, p := range r.players {
		if p.Username == username {
			return nil, fmt.Errorf("%w: %q", ErrUsernameTaken, username)
		}
	}

	p := &Player{ConnID: connID, Username: username, Lives: r.layout.Lives}
	p.assignSlot(r.layout.Slots[len(r.players)])
	r.players = append(r.players, p)
	r.byConn[connID] = p
	return p, nil
}

// Remove 删除玩家并按新的加入顺序重排槽位
func (r *Registry) Remove(connID string) (*Player, bool) {
	p, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(r.byConn, connID)
	for i, q := range r.players {
		if q == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	r.reorganize()
	return p, true
}

// reorganize 剩余玩家依次占用 0..n-1 号槽位
func (r *Registry) reorganize() {
	for i, p := range r.players {
		p.assignSlot(r.layout.Slots[i])
	}
}

// Get 按连接查找
func (r *Registry) Get(connID string) (*Player, bool) {
	p, ok := r.byConn[connID]
	return p, ok
}

// Len 当前人数
func (r *Registry) Len() int { return len(r.players) }

// Players 按槽位顺序返回（内部切片，调用方不得修改）
func (r *Registry) Players() []*Player { return r.players }

// ReadyCount 已准备且仍有生命的人数
func (r *Registry) ReadyCount() int {
	n := 0
	for _, p := range r.players {
		if p.Active() {
			n++
		}
	}
	return n
}

// MarkReady 标记准备并重新计算准备状态
func (r *Registry) MarkReady(connID string) (ReadyOutcome, error) {
	p, ok := r.byConn[connID]
	if !ok {
		return ReadyOutcome{}, ErrUnknownConnection
	}
	p.Ready = true
	return r.Readiness(), nil
}

// Readiness 准备人数 >= 最少人数，且等于当前在线人数时才算全部就绪
func (r *Registry) Readiness() ReadyOutcome {
	ready := r.ReadyCount()
	total := len(r.players)
	switch {
	case ready < r.layout.MinPlayers:
		return ReadyOutcome{State: WaitingForMinimum, Missing: r.layout.MinPlayers - ready}
	case ready < total:
		return ReadyOutcome{State: WaitingForReadyPlayers, Missing: total - ready}
	default:
		return ReadyOutcome{State: AllReady}
	}
}

// ResetAll 一局结束后全部恢复为未准备、满生命
func (r *Registry) ResetAll() {
	for _, p := range r.players {
		p.Ready = false
		p.Lives = r.layout.Lives
		p.IsMoving = false
	}
}

// ReturnToStart 所有球拍回到各自槽位的起点
func (r *Registry) ReturnToStart() {
	for _, p := range r.players {
		p.Pos = r.layout.Slots[p.Slot].Start
	}
}

// Snapshots 全量名单快照
func (r *Registry) Snapshots() []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Snapshot())
	}
	return out
}
