package game

import "math/rand"

const (
	ObstacleCount        = 3
	obstacleMinSize      = 40.0
	obstacleMaxSize      = 110.0
	obstacleCornerRadius = 10.0
	obstacleMaxAttempts  = 500
)

// Obstacle 场内障碍物（碰撞按轴对齐矩形处理，圆角只用于绘制）
type Obstacle struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CornerRadius float64 `json:"cornerRadius"`
}

// Rect 碰撞矩形
func (o Obstacle) Rect() Rect { return Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height} }

// GenerateObstacles 拒绝采样生成互不重叠的障碍物：
//   - 与出生点（棋盘中心、半径 clearance 的圆）不重叠
//   - 彼此之间至少留出 gap，保证球被推出一个障碍物时不会嵌进另一个
//   - 距离四边至少 margin，给球拍和球留出通道
//
// 尝试次数用尽时返回已生成的部分
func GenerateObstacles(rng *rand.Rand, l Layout, count int) []Obstacle {
	clearance := l.BallRadius * 4
	gap := l.BallRadius * 3
	margin := DefaultPaddleThickness + l.BallRadius*4

	out := make([]Obstacle, 0, count)
	for attempt := 0; attempt < obstacleMaxAttempts && len(out) < count; attempt++ {
		w := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		h := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		spanX := l.Width - 2*margin - w
		spanY := l.Height - 2*margin - h
		if spanX <= 0 || spanY <= 0 {
			continue
		}
		o := Obstacle{
			X:            margin + rng.Float64()*spanX,
			Y:            margin + rng.Float64()*spanY,
			Width:        w,
			Height:       h,
			CornerRadius: obstacleCornerRadius,
		}
		if CircleRectOverlap(l.Center(), clearance, o.Rect()) {
			continue
		}
		ok := true
		for _, prev := range out {
			if prev.Rect().Inflate(gap).Overlaps(o.Rect()) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, o)
		}
	}
	return out
}
