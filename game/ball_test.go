package game

import (
	"math"
	"math/rand"
	"testing"
)

func activePlayer(t *testing.T, r *Registry, name string) *Player {
	t.Helper()
	p, err := r.Join("c"+name, name)
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	p.Ready = true
	return p
}

func TestLaunchFromCenterAtMinSpeed(t *testing.T) {
	l := DefaultLayout()
	tn := DefaultTuning()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		var b Ball
		b.Launch(l.Center(), rng, tn)
		if b.Pos != l.Center() {
			t.Fatalf("launch pos = %v", b.Pos)
		}
		if math.Abs(b.Speed()-tn.MinSpeed) > 1e-9 {
			t.Fatalf("launch speed = %v", b.Speed())
		}
		ux, uy := math.Abs(b.Vel.X)/tn.MinSpeed, math.Abs(b.Vel.Y)/tn.MinSpeed
		if ux < tn.MinLaunchAxis || uy < tn.MinLaunchAxis {
			t.Fatalf("launch direction too close to an axis: %v", b.Vel)
		}
	}
}

func TestUnguardedWallReflects(t *testing.T) {
	l := DefaultLayout()
	b := Ball{Pos: Vec{X: l.Width - l.BallRadius - 3, Y: 350}, Vel: Vec{X: 5, Y: 0}, Radius: l.BallRadius}
	if loser := b.Step(l, DefaultTuning(), nil, nil); loser != nil {
		t.Fatalf("unexpected loser %v", loser.Username)
	}
	if b.Vel.X != -5 || b.Vel.Y != 0 {
		t.Fatalf("vel = %v, want (-5, 0)", b.Vel)
	}
	if b.Pos.X != l.Width-l.BallRadius {
		t.Fatalf("pos.x = %v", b.Pos.X)
	}
}

func TestShallowWallBounceGetsFloor(t *testing.T) {
	l := DefaultLayout()
	tn := DefaultTuning()
	b := Ball{Pos: Vec{X: l.BallRadius + 0.2, Y: 350}, Vel: Vec{X: -0.5, Y: -5}, Radius: l.BallRadius}
	b.Step(l, tn, nil, nil)
	if b.Vel.X < tn.MinBounce {
		t.Fatalf("vel.x = %v, want >= %v", b.Vel.X, tn.MinBounce)
	}
	if b.Vel.Y >= 0 {
		t.Fatalf("vel.y flipped: %v", b.Vel.Y)
	}
}

func TestPaddleBounceSpeedsUpAndRepositions(t *testing.T) {
	l := DefaultLayout()
	tn := DefaultTuning()
	r := NewRegistry(l)
	p := activePlayer(t, r, "a")

	b := Ball{Pos: Vec{X: 33, Y: 350}, Vel: Vec{X: -5, Y: 0}, Radius: l.BallRadius}
	if loser := b.Step(l, tn, r.Players(), nil); loser != nil {
		t.Fatal("ball hitting the paddle must not cost a life")
	}
	if math.Abs(b.Vel.X-5*tn.SpeedUp) > 1e-9 || b.Vel.Y != 0 {
		t.Fatalf("vel = %v, want (%v, 0)", b.Vel, 5*tn.SpeedUp)
	}
	if b.Pos.X != p.Pos.X+p.Width+b.Radius {
		t.Fatalf("ball not placed in front of paddle: %v", b.Pos)
	}
}

func TestPaddleEnglishFromOffCenterHit(t *testing.T) {
	l := DefaultLayout()
	tn := DefaultTuning()
	r := NewRegistry(l)
	_ = activePlayer(t, r, "a")

	// 击中球拍下半部分：Y 分量应当向下
	b := Ball{Pos: Vec{X: 33, Y: 420}, Vel: Vec{X: -5, Y: 0}, Radius: l.BallRadius}
	b.Step(l, tn, r.Players(), nil)
	if b.Vel.X <= 0 || b.Vel.Y <= 0 {
		t.Fatalf("vel = %v, want both positive", b.Vel)
	}
	if s := b.Speed(); s < tn.MinSpeed-1e-9 || s > tn.MaxSpeed+1e-9 {
		t.Fatalf("speed %v out of range", s)
	}
}

func TestPaddleBounceCapsAtMaxSpeed(t *testing.T) {
	l := DefaultLayout()
	tn := DefaultTuning()
	r := NewRegistry(l)
	_ = activePlayer(t, r, "a")

	b := Ball{Pos: Vec{X: 37, Y: 350}, Vel: Vec{X: -9.8, Y: 0}, Radius: l.BallRadius}
	b.Step(l, tn, r.Players(), nil)
	if math.Abs(b.Speed()-tn.MaxSpeed) > 1e-9 {
		t.Fatalf("speed = %v, want %v", b.Speed(), tn.MaxSpeed)
	}
}

func TestObstacleBouncePushesOut(t *testing.T) {
	l := DefaultLayout()
	obs := []Obstacle{{X: 300, Y: 300, Width: 100, Height: 100}}
	b := Ball{Pos: Vec{X: 288, Y: 350}, Vel: Vec{X: 5, Y: 0}, Radius: l.BallRadius}
	b.Step(l, DefaultTuning(), nil, obs)
	if b.Pos.X != 290 || b.Vel.X != -5 {
		t.Fatalf("ball = %+v, want x=290 vx=-5", b)
	}
	if CircleRectOverlap(b.Pos, b.Radius, obs[0].Rect()) {
		t.Fatal("ball still inside obstacle")
	}
}

func TestObstacleBounceFromAbove(t *testing.T) {
	l := DefaultLayout()
	obs := []Obstacle{{X: 300, Y: 300, Width: 100, Height: 100}}
	b := Ball{Pos: Vec{X: 350, Y: 287}, Vel: Vec{X: 2, Y: 6}, Radius: l.BallRadius}
	b.Step(l, DefaultTuning(), nil, obs)
	if b.Pos.Y != 290 || b.Vel.Y >= 0 {
		t.Fatalf("ball = %+v, want y=290 and moving up", b)
	}
}

func TestBackingWallCostsLife(t *testing.T) {
	l := DefaultLayout()
	r := NewRegistry(l)
	p := activePlayer(t, r, "a")
	p.Pos.Y = 0

	b := Ball{Pos: Vec{X: 12, Y: 600}, Vel: Vec{X: -5, Y: 0}, Radius: l.BallRadius}
	if loser := b.Step(l, DefaultTuning(), r.Players(), nil); loser != p {
		t.Fatalf("loser = %v, want a", loser)
	}
}

func TestEliminatedSideBecomesWall(t *testing.T) {
	l := DefaultLayout()
	r := NewRegistry(l)
	p := activePlayer(t, r, "a")
	p.Pos.Y = 0
	p.Lives = 0

	b := Ball{Pos: Vec{X: 12, Y: 600}, Vel: Vec{X: -5, Y: 0}, Radius: l.BallRadius}
	if loser := b.Step(l, DefaultTuning(), r.Players(), nil); loser != nil {
		t.Fatal("eliminated player cannot lose another life")
	}
	if b.Vel.X <= 0 {
		t.Fatalf("vel = %v, want reflected", b.Vel)
	}
}

// 长时间模拟：速度始终在区间内，球始终在棋盘内且不嵌入障碍物
func TestStepInvariantsOverLongRally(t *testing.T) {
	l := DefaultLayout()
	tn := DefaultTuning()
	rng := rand.New(rand.NewSource(11))
	r := NewRegistry(l)
	players := []*Player{activePlayer(t, r, "a"), activePlayer(t, r, "b")}
	obs := GenerateObstacles(rng, l, ObstacleCount)

	b := Ball{Radius: l.BallRadius}
	b.Launch(l.Center(), rng, tn)
	losses := 0
	for i := 0; i < 20000; i++ {
		for _, p := range players {
			want := b.Pos.Y - (p.Pos.Y + p.Height/2)
			p.move(Vec{Y: Clamp(want, -tn.MaxPaddleStep, tn.MaxPaddleStep)*0.8 + rng.Float64()*4 - 2}, l)
		}
		if loser := b.Step(l, tn, r.Players(), obs); loser != nil {
			losses++
			b.Launch(l.Center(), rng, tn)
			continue
		}
		if s := b.Speed(); s < tn.MinSpeed-1e-9 || s > tn.MaxSpeed+1e-9 {
			t.Fatalf("tick %d: speed %v out of range", i, s)
		}
		if b.Pos.X < b.Radius || b.Pos.X > l.Width-b.Radius || b.Pos.Y < b.Radius || b.Pos.Y > l.Height-b.Radius {
			t.Fatalf("tick %d: ball outside board: %v", i, b.Pos)
		}
		for _, o := range obs {
			if CircleRectOverlap(b.Pos, b.Radius-1e-6, o.Rect()) {
				t.Fatalf("tick %d: ball inside obstacle %+v at %v", i, o, b.Pos)
			}
		}
	}
	t.Logf("%d lives lost in 20000 ticks", losses)
}

func TestSideSet(t *testing.T) {
	var g sideSet
	g.add(SideTop)
	g.add(Side("diagonal"))
	for _, side := range []Side{SideLeft, SideRight, SideTop, SideBottom} {
		if g.has(side) != (side == SideTop) {
			t.Fatalf("has(%s) = %v", side, g.has(side))
		}
	}
	if g.has(Side("diagonal")) {
		t.Fatal("unknown side reported as guarded")
	}
}
