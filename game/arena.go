package game

const (
	DefaultBoardSize       = 700.0
	DefaultPaddleLength    = 200.0
	DefaultPaddleThickness = 20.0
	DefaultBallRadius      = 10.0

	MinPlayers    = 2
	MaxPlayers    = 4
	StartingLives = 3
)

// Side 球拍所在的棋盘边
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// sideSet 四条边的集合，Tick 内使用，不分配内存
type sideSet [4]bool

func (s Side) index() int {
	switch s {
	case SideLeft:
		return 0
	case SideRight:
		return 1
	case SideTop:
		return 2
	case SideBottom:
		return 3
	}
	return -1
}

func (g *sideSet) add(s Side) {
	if i := s.index(); i >= 0 {
		g[i] = true
	}
}

func (g sideSet) has(s Side) bool {
	i := s.index()
	return i >= 0 && g[i]
}

// Vertical 左右两侧的球拍竖放，沿 Y 轴移动
func (s Side) Vertical() bool { return s == SideLeft || s == SideRight }

// Slot 固定的球拍位：起始位置、尺寸、朝向与颜色
type Slot struct {
	Index  int
	Side   Side
	Color  string
	Angle  float64
	Start  Vec
	Width  float64
	Height float64
}

// Layout 进程内不可变的场地布局
type Layout struct {
	Width      float64
	Height     float64
	BallRadius float64
	MinPlayers int
	MaxPlayers int
	Lives      int
	Slots      [MaxPlayers]Slot
}

// NewLayout 按棋盘尺寸与球拍尺寸生成 4 个槽位：
// 0 左(蓝) 1 右(红) 2 上(绿) 3 下(黄)，球拍居中于各自的边
func NewLayout(width, height, paddleLength, paddleThickness float64) Layout {
	l := Layout{
		Width:      width,
		Height:     height,
		BallRadius: DefaultBallRadius,
		MinPlayers: MinPlayers,
		MaxPlayers: MaxPlayers,
		Lives:      StartingLives,
	}
	midY := (height - paddleLength) / 2
	midX := (width - paddleLength) / 2
	l.Slots = [MaxPlayers]Slot{
		{Index: 0, Side: SideLeft, Color: "blue", Angle: -90,
			Start: Vec{X: 0, Y: midY}, Width: paddleThickness, Height: paddleLength},
		{Index: 1, Side: SideRight, Color: "red", Angle: 90,
			Start: Vec{X: width - paddleThickness, Y: midY}, Width: paddleThickness, Height: paddleLength},
		{Index: 2, Side: SideTop, Color: "green", Angle: 0,
			Start: Vec{X: midX, Y: 0}, Width: paddleLength, Height: paddleThickness},
		{Index: 3, Side: SideBottom, Color: "yellow", Angle: 180,
			Start: Vec{X: midX, Y: height - paddleThickness}, Width: paddleLength, Height: paddleThickness},
	}
	return l
}

// DefaultLayout 700x700 棋盘
func DefaultLayout() Layout {
	return NewLayout(DefaultBoardSize, DefaultBoardSize, DefaultPaddleLength, DefaultPaddleThickness)
}

// Center 棋盘中心，也是球的出生点
func (l Layout) Center() Vec { return Vec{X: l.Width / 2, Y: l.Height / 2} }

