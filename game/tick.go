package game

import (
	"context"
	"math"
	"time"
)

// Run 单线程推进会话：收件箱命令、倒计时、Tick 都在这里串行执行，互不重叠
func (s *Session) Run(ctx context.Context) {
	defer s.stopTicker()
	defer s.stopCountdown()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.Inbox:
			s.handle(cmd)
		case <-s.countdownC():
			s.CompleteCountdown()
		case <-s.tickC():
			s.Tick()
		}
	}
}

// Submit 投递命令，收件箱满时阻塞直到 ctx 结束
func (s *Session) Submit(ctx context.Context, cmd any) error {
	select {
	case s.Inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offer 非阻塞投递：收件箱满时丢弃（移动意图宁可丢也不能拖慢 Tick）
func (s *Session) Offer(cmd any) bool {
	select {
	case s.Inbox <- cmd:
		return true
	default:
		s.metrics.IncInboxDropped()
		return false
	}
}

func (s *Session) handle(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		s.Connect(c.ConnID)
	case SetUsername:
		_, _ = s.Join(c.ConnID, c.Username)
	case PlayerReady:
		_, _ = s.SetReady(c.ConnID)
	case StartGame:
		_ = s.StartGame(c.ConnID)
	case Movement:
		s.RecordIntent(c.ConnID, c.Delta)
	case Disconnect:
		s.Remove(c.ConnID)
	case GetTuning:
		c.Reply <- s.tuning
	case UpdateTuning:
		t, err := s.updateTuning(c.Patch)
		c.Reply <- TuningResult{Tuning: t, Err: err}
	case GetStatus:
		c.Reply <- s.Status()
	default:
		s.log.Warnf("unknown command %T", cmd)
	}
}

// Tick 一个固定步长：应用移动意图 -> 推进球 -> 广播
func (s *Session) Tick() {
	if s.phase != PhaseRunning {
		return
	}
	start := time.Now()
	s.tickSeq++

	moved := s.applyIntents()
	if loser := s.ball.Step(s.layout, s.tuning, s.registry.Players(), s.obstacles); loser != nil {
		s.loseLife(loser)
	}
	// 本 Tick 内结束了游戏就不再广播球的位置
	if s.phase == PhaseRunning {
		s.transport.Broadcast(EvBallMoved, s.ball.Snapshot())
		for _, p := range moved {
			s.transport.Broadcast(EvPlayerMoved, p.Snapshot())
		}
	}
	s.metrics.AddTick(time.Since(start).Nanoseconds())
}

// applyIntents 意图按最大步长裁剪后一次性应用，然后清空（松开按键即停止）
func (s *Session) applyIntents() []*Player {
	var moved []*Player
	step := s.tuning.MaxPaddleStep
	for _, p := range s.registry.Players() {
		p.IsMoving = false
		d, ok := s.intents[p.ConnID]
		if !ok || !p.Active() {
			continue
		}
		d = Vec{X: Clamp(d.X, -step, step), Y: Clamp(d.Y, -step, step)}
		if math.IsNaN(d.X) || math.IsNaN(d.Y) {
			continue
		}
		if p.move(d, s.layout) {
			p.IsMoving = true
			moved = append(moved, p)
		}
	}
	clear(s.intents)
	return moved
}

// startTicker 幂等：已在运行则不会再开第二个循环
func (s *Session) startTicker() {
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(time.Second / time.Duration(s.tickHz))
}

// stopTicker 幂等，可重复调用
func (s *Session) stopTicker() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
}

// Ticking 当前是否有 Tick 循环
func (s *Session) Ticking() bool { return s.ticker != nil }

func (s *Session) tickC() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

func (s *Session) startCountdown() {
	s.stopCountdown()
	s.timer = time.NewTimer(s.countdown)
}

func (s *Session) stopCountdown() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
}

func (s *Session) countdownC() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.C
}
