package game

// Player 注册表内的玩家实体（服务端权威状态）
type Player struct {
	ConnID   string
	Username string
	Slot     int
	Side     Side
	Color    string
	Angle    float64
	Pos      Vec
	Width    float64
	Height   float64
	Ready    bool
	Lives    int
	IsMoving bool // 本 Tick 是否移动过，每个 Tick 开始时清除
}

// PlayerSnapshot 为广播给客户端的玩家记录
type PlayerSnapshot struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Slot     int     `json:"slot"`
	Position Vec     `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Color    string  `json:"color"`
	Side     Side    `json:"side"`
	Angle    float64 `json:"angle"`
	Ready    bool    `json:"ready"`
	Lives    int     `json:"lives"`
	IsMoving bool    `json:"isMoving"`
}

// Snapshot 返回只读副本
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.ConnID,
		Username: p.Username,
		Slot:     p.Slot,
		Position: p.Pos,
		Width:    p.Width,
		Height:   p.Height,
		Color:    p.Color,
		Side:     p.Side,
		Angle:    p.Angle,
		Ready:    p.Ready,
		Lives:    p.Lives,
		IsMoving: p.IsMoving,
	}
}

// Rect 球拍占据的矩形
func (p *Player) Rect() Rect {
	return Rect{X: p.Pos.X, Y: p.Pos.Y, W: p.Width, H: p.Height}
}

// Active 是否参与本局：已准备且仍有生命
func (p *Player) Active() bool { return p.Ready && p.Lives > 0 }

// assignSlot 按槽位表重置位置、尺寸、颜色与朝向
func (p *Player) assignSlot(s Slot) {
	p.Slot = s.Index
	p.Side = s.Side
	p.Color = s.Color
	p.Angle = s.Angle
	p.Pos = s.Start
	p.Width = s.Width
	p.Height = s.Height
}

// move 沿球拍的移动轴平移并裁剪到棋盘内，返回是否真的移动了
func (p *Player) move(delta Vec, l Layout) bool {
	before := p.Pos
	if p.Side.Vertical() {
		p.Pos.Y = Clamp(p.Pos.Y+delta.Y, 0, l.Height-p.Height)
	} else {
		p.Pos.X = Clamp(p.Pos.X+delta.X, 0, l.Width-p.Width)
	}
	return p.Pos != before
}
