package game

import (
	"math"
	"math/rand"
)

const launchAttempts = 100

// Ball 场上唯一的球
type Ball struct {
	Pos    Vec
	Vel    Vec
	Radius float64
}

// BallSnapshot 每个 Tick 广播的球状态
type BallSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

// Snapshot 返回只读副本
func (b *Ball) Snapshot() BallSnapshot {
	return BallSnapshot{X: b.Pos.X, Y: b.Pos.Y, Radius: b.Radius, DX: b.Vel.X, DY: b.Vel.Y}
}

// Speed 当前速率
func (b *Ball) Speed() float64 { return b.Vel.Len() }

// Launch 回到中心并以最小速度沿随机方向发出。
// 拒绝接近零的向量，以及几乎平行于某条轴的方向（否则球会在两面墙之间来回很久）
func (b *Ball) Launch(center Vec, rng *rand.Rand, t Tuning) {
	b.Pos = center
	dir := Vec{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}
	for i := 0; i < launchAttempts; i++ {
		v := Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
		n := v.Len()
		if n < 1e-6 {
			continue
		}
		u := Vec{X: v.X / n, Y: v.Y / n}
		if math.Abs(u.X) < t.MinLaunchAxis || math.Abs(u.Y) < t.MinLaunchAxis {
			continue
		}
		dir = u
		break
	}
	b.Vel = Vec{X: dir.X * t.MinSpeed, Y: dir.Y * t.MinSpeed}
}

// Step 推进一个 Tick 并按固定顺序解析碰撞：
// (a) 无人防守的边界 (b) 球拍 (c) 障碍物 (d) 球拍背后的墙。
// 顺序有意义：后面的检查可以覆盖前面设置的速度。
// 返回丢命的玩家（背后的墙被击中），否则返回 nil
func (b *Ball) Step(l Layout, t Tuning, players []*Player, obstacles []Obstacle) *Player {
	b.Pos.X += b.Vel.X
	b.Pos.Y += b.Vel.Y

	var guarded sideSet
	for _, p := range players {
		if p.Active() {
			guarded.add(p.Side)
		}
	}

	b.bounceEdges(l, t, guarded)
	for _, p := range players {
		if p.Active() && CircleRectOverlap(b.Pos, b.Radius, p.Rect()) {
			b.bounceOffPaddle(p, t)
		}
	}
	for _, o := range obstacles {
		if CircleRectOverlap(b.Pos, b.Radius, o.Rect()) {
			b.bounceOffObstacle(o.Rect(), t)
		}
	}
	for _, p := range players {
		if p.Active() && b.behind(p.Side, l) {
			return p
		}
	}

	// 兜底：任何情况下都不让球停留在棋盘之外
	b.Pos.X = Clamp(b.Pos.X, b.Radius, l.Width-b.Radius)
	b.Pos.Y = Clamp(b.Pos.Y, b.Radius, l.Height-b.Radius)
	return nil
}

// bounceEdges 无人防守的边就是普通墙
func (b *Ball) bounceEdges(l Layout, t Tuning, guarded sideSet) {
	r := b.Radius
	if !guarded.has(SideLeft) && b.Pos.X-r < 0 {
		b.Pos.X = r
		b.Vel.X = math.Abs(b.Vel.X)
		b.Vel = Settle(b.Vel, AxisX, t.MinBounce, t.MinSpeed, t.MaxSpeed)
	}
	if !guarded.has(SideRight) && b.Pos.X+r > l.Width {
		b.Pos.X = l.Width - r
		b.Vel.X = -math.Abs(b.Vel.X)
		if b.Vel.X == 0 {
			b.Vel.X = -t.MinBounce
		}
		b.Vel = Settle(b.Vel, AxisX, t.MinBounce, t.MinSpeed, t.MaxSpeed)
	}
	if !guarded.has(SideTop) && b.Pos.Y-r < 0 {
		b.Pos.Y = r
		b.Vel.Y = math.Abs(b.Vel.Y)
		b.Vel = Settle(b.Vel, AxisY, t.MinBounce, t.MinSpeed, t.MaxSpeed)
	}
	if !guarded.has(SideBottom) && b.Pos.Y+r > l.Height {
		b.Pos.Y = l.Height - r
		b.Vel.Y = -math.Abs(b.Vel.Y)
		if b.Vel.Y == 0 {
			b.Vel.Y = -t.MinBounce
		}
		b.Vel = Settle(b.Vel, AxisY, t.MinBounce, t.MinSpeed, t.MaxSpeed)
	}
}

// bounceOffPaddle 竖拍翻转 X 分量，横拍翻转 Y 分量；
// 击球点偏离中心时附加切向分量，然后加速并整理速率，最后把球放到拍面前方
func (b *Ball) bounceOffPaddle(p *Player, t Tuning) {
	speed := b.Speed()
	c := p.Rect().Center()
	switch p.Side {
	case SideLeft, SideRight:
		dir := 1.0
		if p.Side == SideRight {
			dir = -1
		}
		rel := Clamp((b.Pos.Y-c.Y)/(p.Height/2), -1, 1)
		b.Vel.X = dir * math.Max(math.Abs(b.Vel.X), t.MinBounce)
		b.Vel.Y += rel * t.English * speed
		b.Vel = Settle(scale(b.Vel, t.SpeedUp), AxisX, t.MinBounce, t.MinSpeed, t.MaxSpeed)
		if p.Side == SideLeft {
			b.Pos.X = p.Pos.X + p.Width + b.Radius
		} else {
			b.Pos.X = p.Pos.X - b.Radius
		}
	default:
		dir := 1.0
		if p.Side == SideBottom {
			dir = -1
		}
		rel := Clamp((b.Pos.X-c.X)/(p.Width/2), -1, 1)
		b.Vel.Y = dir * math.Max(math.Abs(b.Vel.Y), t.MinBounce)
		b.Vel.X += rel * t.English * speed
		b.Vel = Settle(scale(b.Vel, t.SpeedUp), AxisY, t.MinBounce, t.MinSpeed, t.MaxSpeed)
		if p.Side == SideTop {
			b.Pos.Y = p.Pos.Y + p.Height + b.Radius
		} else {
			b.Pos.Y = p.Pos.Y - b.Radius
		}
	}
}

// bounceOffObstacle 沿侵入较浅的轴反射，并把球推到障碍物外侧防止穿透或粘住
func (b *Ball) bounceOffObstacle(r Rect, t Tuning) {
	px, py := Penetration(b.Pos, b.Radius, r)
	c := r.Center()
	if px < py {
		if b.Pos.X < c.X {
			b.Pos.X = r.X - b.Radius
			b.Vel.X = -math.Max(math.Abs(b.Vel.X), t.MinBounce)
		} else {
			b.Pos.X = r.X + r.W + b.Radius
			b.Vel.X = math.Max(math.Abs(b.Vel.X), t.MinBounce)
		}
		b.Vel = Settle(b.Vel, AxisX, t.MinBounce, t.MinSpeed, t.MaxSpeed)
		return
	}
	if b.Pos.Y < c.Y {
		b.Pos.Y = r.Y - b.Radius
		b.Vel.Y = -math.Max(math.Abs(b.Vel.Y), t.MinBounce)
	} else {
		b.Pos.Y = r.Y + r.H + b.Radius
		b.Vel.Y = math.Max(math.Abs(b.Vel.Y), t.MinBounce)
	}
	b.Vel = Settle(b.Vel, AxisY, t.MinBounce, t.MinSpeed, t.MaxSpeed)
}

// behind 球是否触到了该边（即越过了守在这条边上的球拍）
func (b *Ball) behind(side Side, l Layout) bool {
	r := b.Radius
	switch side {
	case SideLeft:
		return b.Pos.X-r <= 0
	case SideRight:
		return b.Pos.X+r >= l.Width
	case SideTop:
		return b.Pos.Y-r <= 0
	default:
		return b.Pos.Y+r >= l.Height
	}
}

func scale(v Vec, k float64) Vec { return Vec{X: v.X * k, Y: v.Y * k} }
