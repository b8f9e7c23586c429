package game

import "math"

// Vec 二维向量（位置或速度），棋盘坐标系，原点在左上角
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Len 向量长度
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Axis 碰撞解析所沿的坐标轴
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Rect 轴对齐矩形，(X,Y) 为左上角
type Rect struct {
	X, Y, W, H float64
}

// Center 矩形中心点
func (r Rect) Center() Vec { return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Overlaps 两个矩形是否相交（仅接触边界不算）
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Inflate 四周各扩展 d
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// CircleRectOverlap 圆与矩形是否重叠：取矩形上离圆心最近的点比较距离
func CircleRectOverlap(c Vec, radius float64, r Rect) bool {
	nx := Clamp(c.X, r.X, r.X+r.W)
	ny := Clamp(c.Y, r.Y, r.Y+r.H)
	dx := c.X - nx
	dy := c.Y - ny
	return dx*dx+dy*dy < radius*radius
}

// Penetration 返回圆在 X、Y 两轴上侵入矩形的深度（取较浅一侧）
func Penetration(c Vec, radius float64, r Rect) (px, py float64) {
	px = math.Min(c.X+radius-r.X, r.X+r.W-(c.X-radius))
	py = math.Min(c.Y+radius-r.Y, r.Y+r.H-(c.Y-radius))
	return px, py
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Floor 保证 |v| >= min 且不改变符号；v 为 0 时取 fallback 的符号
func Floor(v, min, fallback float64) float64 {
	if math.Abs(v) >= min {
		return v
	}
	if v > 0 || (v == 0 && fallback >= 0) {
		return min
	}
	return -min
}

// Settle 在碰撞后统一整理速度：
// 1. 反射轴分量保持不小于 floor（符号不变）
// 2. 总速度落在 [minSpeed, maxSpeed]，优先保留反射轴分量，只调整另一轴
// 要求 floor < minSpeed（由 Tuning.Validate 保证）
func Settle(v Vec, axis Axis, floor, minSpeed, maxSpeed float64) Vec {
	a, o := v.X, v.Y
	if axis == AxisY {
		a, o = v.Y, v.X
	}
	a = Floor(a, floor, a)
	if math.Abs(a) > maxSpeed {
		a = math.Copysign(maxSpeed, a)
	}

	speed := math.Hypot(a, o)
	target := Clamp(speed, minSpeed, maxSpeed)
	if speed != target {
		// 此时 |a| <= target，只需要重新计算另一轴
		rest := math.Sqrt(math.Max(target*target-a*a, 0))
		if o < 0 {
			rest = -rest
		}
		o = rest
	}

	if axis == AxisY {
		return Vec{X: o, Y: a}
	}
	return Vec{X: a, Y: o}
}

// ClampSpeed 等比缩放速度到 [min, max]；零向量原样返回
func ClampSpeed(v Vec, min, max float64) Vec {
	speed := v.Len()
	if speed == 0 {
		return v
	}
	target := Clamp(speed, min, max)
	if target == speed {
		return v
	}
	k := target / speed
	return Vec{X: v.X * k, Y: v.Y * k}
}
