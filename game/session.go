package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Phase 会话生命周期：Lobby -> Countdown -> Running -> GameOver -> Lobby
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseCountdown
	PhaseRunning
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseCountdown:
		return "countdown"
	case PhaseRunning:
		return "running"
	case PhaseGameOver:
		return "gameOver"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// CountdownMode 倒计时由谁结束
type CountdownMode string

const (
	CountdownServer CountdownMode = "server" // 服务端计时器
	CountdownClient CountdownMode = "client" // 第一个已准备玩家发来 startGame
)

const (
	DefaultTickHz    = 60
	DefaultCountdown = 3 * time.Second
	defaultInboxSize = 256
)

// Options 会话构造参数，零值字段取默认值
type Options struct {
	Layout        Layout
	Tuning        Tuning
	TickHz        int
	Countdown     time.Duration
	CountdownMode CountdownMode
	InboxSize     int
	Logger        *zap.SugaredLogger
	Rand          *rand.Rand
	Metrics       *Metrics
}

func (o Options) withDefaults() Options {
	if o.Layout.Width == 0 {
		o.Layout = DefaultLayout()
	}
	if o.Tuning == (Tuning{}) {
		o.Tuning = DefaultTuning()
	}
	if o.TickHz <= 0 {
		o.TickHz = DefaultTickHz
	}
	if o.Countdown <= 0 {
		o.Countdown = DefaultCountdown
	}
	if o.CountdownMode == "" {
		o.CountdownMode = CountdownServer
	}
	if o.InboxSize <= 0 {
		o.InboxSize = defaultInboxSize
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Metrics == nil {
		o.Metrics = &Metrics{}
	}
	return o
}

// Session 单个竞技场的权威状态：注册表、球、障碍物与生命周期。
// 除 Inbox/Submit/Offer/Metrics 外的方法都不是并发安全的，只能在 Run 协程中调用
// （或在 Run 未启动时由测试直接调用）
type Session struct {
	Inbox chan any

	layout    Layout
	tuning    Tuning
	registry  *Registry
	ball      Ball
	obstacles []Obstacle
	intents   map[string]Vec
	phase     Phase
	tickSeq   int64

	tickHz    int
	countdown time.Duration
	mode      CountdownMode
	ticker    *time.Ticker
	timer     *time.Timer

	transport Transport
	log       *zap.SugaredLogger
	rng       *rand.Rand
	metrics   *Metrics
}

// NewSession 创建会话，初始处于 Lobby
func NewSession(t Transport, opts Options) *Session {
	o := opts.withDefaults()
	return &Session{
		Inbox:     make(chan any, o.InboxSize),
		layout:    o.Layout,
		tuning:    o.Tuning,
		registry:  NewRegistry(o.Layout),
		ball:      Ball{Pos: o.Layout.Center(), Radius: o.Layout.BallRadius},
		intents:   make(map[string]Vec),
		phase:     PhaseLobby,
		tickHz:    o.TickHz,
		countdown: o.Countdown,
		mode:      o.CountdownMode,
		transport: t,
		log:       o.Logger,
		rng:       o.Rand,
		metrics:   o.Metrics,
	}
}

// Phase 当前阶段
func (s *Session) Phase() Phase { return s.phase }

// Registry 玩家注册表
func (s *Session) Registry() *Registry { return s.registry }

// Ball 当前球状态（副本）
func (s *Session) Ball() Ball { return s.ball }

// Obstacles 当前障碍物
func (s *Session) Obstacles() []Obstacle { return s.obstacles }

// Tuning 当前物理参数
func (s *Session) Tuning() Tuning { return s.tuning }

// Metrics 运行指标（并发安全）
func (s *Session) Metrics() *Metrics { return s.metrics }

// Connect 新连接：先发一份当前名单
func (s *Session) Connect(connID string) {
	s.transport.Send(connID, EvCurrentPlayers, s.registry.Snapshots())
}

// Join 处理 setUsername；拒绝只回给请求方
func (s *Session) Join(connID, username string) (PlayerSnapshot, error) {
	p, err := s.registry.Join(connID, username)
	if err != nil {
		s.reject(connID, username, err)
		return PlayerSnapshot{}, err
	}
	s.log.Infof("%s has joined (conn=%s slot=%d side=%s)", p.Username, connID, p.Slot, p.Side)
	s.transport.Send(connID, EvUserSet, UserSet{Username: p.Username, Position: p.Pos})
	s.transport.Broadcast(EvCurrentPlayers, s.registry.Snapshots())
	if s.phase == PhaseRunning {
		// 中途加入的玩家不参与本局，但需要看到场地
		s.transport.Send(connID, EvObstaclesUpdated, s.obstacles)
		s.transport.Send(connID, EvBallMoved, s.ball.Snapshot())
	}
	return p.Snapshot(), nil
}

func (s *Session) reject(connID, username string, err error) {
	s.metrics.IncRejections()
	switch {
	case errors.Is(err, ErrLobbyFull):
		s.transport.Send(connID, EvLobbyFull, "The lobby is full. Please try again later.")
	case errors.Is(err, ErrUsernameTaken):
		s.transport.Send(connID, EvUserExists, username+" username is taken! Try another username.")
	case errors.Is(err, ErrInvalidUsername):
		s.transport.Send(connID, EvInvalidUsername, "Username must be 1-16 letters or digits.")
	default:
		s.log.Debugf("join ignored: conn=%s err=%v", connID, err)
		return
	}
	s.log.Infof("join rejected: conn=%s username=%q err=%v", connID, username, err)
}

// SetReady 处理 playerReady
func (s *Session) SetReady(connID string) (ReadyOutcome, error) {
	if s.phase == PhaseRunning {
		s.transport.Send(connID, EvGameIsStarted, "The game has already started. Please wait for the next round.")
		return ReadyOutcome{State: GameAlreadyStarted}, ErrGameAlreadyStarted
	}
	if s.phase == PhaseGameOver {
		s.phase = PhaseLobby
	}
	out, err := s.registry.MarkReady(connID)
	if err != nil {
		s.log.Debugf("ready from unknown conn=%s", connID)
		return out, err
	}
	s.transport.Broadcast(EvPlayerStateChanged, s.registry.Snapshots())

	switch out.State {
	case AllReady:
		if s.phase == PhaseLobby {
			s.beginCountdown()
		} else {
			s.transport.Send(connID, EvAllPlayersReady, "All players are ready! The game will now start.")
		}
	case WaitingForReadyPlayers:
		s.transport.Send(connID, EvWaiting, fmt.Sprintf("Waiting for %d more players to be ready.", out.Missing))
	case WaitingForMinimum:
		s.transport.Send(connID, EvWaiting, fmt.Sprintf("Waiting for at least %d more players to join.", out.Missing))
	}
	return out, nil
}

// StartGame 处理 startGame：Running 时拒绝；客户端倒计时模式下由已准备玩家结束倒计时
func (s *Session) StartGame(connID string) error {
	switch s.phase {
	case PhaseRunning:
		s.transport.Send(connID, EvGameIsStarted, "The game has already started.")
		return ErrGameAlreadyStarted
	case PhaseCountdown:
		if s.mode != CountdownClient {
			return nil
		}
		p, ok := s.registry.Get(connID)
		if !ok {
			return ErrUnknownConnection
		}
		if p.Ready {
			s.CompleteCountdown()
		}
	}
	return nil
}

// RecordIntent 缓存移动意图，最后一次覆盖之前的，下个 Tick 统一生效
func (s *Session) RecordIntent(connID string, delta Vec) {
	if _, ok := s.registry.Get(connID); !ok || s.phase != PhaseRunning {
		s.metrics.IncIgnored()
		return
	}
	s.intents[connID] = delta
	s.metrics.IncAccepted()
}

// Remove 处理断线：删除玩家、重排槽位，必要时结束本局或取消倒计时
func (s *Session) Remove(connID string) {
	p, ok := s.registry.Remove(connID)
	if !ok {
		return
	}
	delete(s.intents, connID)
	s.log.Infof("%s has disconnected (conn=%s phase=%s)", p.Username, connID, s.phase)
	s.transport.Broadcast(EvCurrentPlayers, s.registry.Snapshots())

	switch s.phase {
	case PhaseRunning:
		s.checkGameOver()
	case PhaseCountdown:
		if s.registry.ReadyCount() < s.layout.MinPlayers {
			s.abortCountdown()
		}
	case PhaseLobby, PhaseGameOver:
		// 未准备的玩家离开后，剩下的人可能已全部就绪
		if s.registry.Readiness().State == AllReady {
			s.phase = PhaseLobby
			s.beginCountdown()
		}
	}
}

// beginCountdown Lobby -> Countdown
func (s *Session) beginCountdown() {
	s.phase = PhaseCountdown
	s.log.Infof("all %d players ready, countdown %s (%s mode)", s.registry.Len(), s.countdown, s.mode)
	s.transport.Broadcast(EvAllPlayersReady, "All players are ready! The game will now start.")
	if s.mode == CountdownServer {
		s.startCountdown()
	}
}

// CompleteCountdown Countdown -> Running；倒计时期间人数不足则回到 Lobby
func (s *Session) CompleteCountdown() {
	if s.phase != PhaseCountdown {
		return
	}
	s.stopCountdown()
	if s.registry.ReadyCount() < s.layout.MinPlayers {
		s.abortCountdown()
		return
	}
	s.phase = PhaseRunning
	s.metrics.IncGamesStarted()
	s.reset()
	s.startTicker()
	s.log.Infof("game started with %d players", s.registry.ReadyCount())
	s.transport.Broadcast(EvGameStarting, "The game is starting!")
}

func (s *Session) abortCountdown() {
	s.stopCountdown()
	s.phase = PhaseLobby
	s.log.Infof("countdown aborted, ready=%d", s.registry.ReadyCount())
	s.transport.Broadcast(EvWaiting, "Not enough ready players. Back to the lobby.")
}

// reset 发球、球拍归位、重新生成障碍物，并广播新的局面
func (s *Session) reset() {
	s.ball.Radius = s.layout.BallRadius
	s.ball.Launch(s.layout.Center(), s.rng, s.tuning)
	s.registry.ReturnToStart()
	s.obstacles = GenerateObstacles(s.rng, s.layout, ObstacleCount)
	if len(s.obstacles) < ObstacleCount {
		s.log.Warnf("only %d of %d obstacles placed", len(s.obstacles), ObstacleCount)
	}
	s.transport.Broadcast(EvBallMoved, s.ball.Snapshot())
	s.transport.Broadcast(EvObstaclesUpdated, s.obstacles)
	s.transport.Broadcast(EvCurrentPlayers, s.registry.Snapshots())
}

// loseLife 球越过了 p 的球拍
func (s *Session) loseLife(p *Player) {
	p.Lives--
	s.metrics.IncLivesLost()
	s.log.Infof("%s lost a life, %d left", p.Username, p.Lives)
	s.transport.Broadcast(EvPlayerLostLife, LifeLost{ID: p.ConnID, Lives: p.Lives})
	s.reset()
	s.checkElimination(p)
}

// checkElimination 生命归零的玩家退出本局（其所在边变成普通墙）
func (s *Session) checkElimination(p *Player) {
	if p.Lives <= 0 && p.Ready {
		p.Ready = false
		s.log.Infof("%s eliminated", p.Username)
		s.transport.Broadcast(EvPlayerStateChanged, s.registry.Snapshots())
	}
	s.checkGameOver()
}

func (s *Session) checkGameOver() {
	if s.phase == PhaseRunning && s.registry.ReadyCount() < s.layout.MinPlayers {
		s.endGame()
	}
}

// endGame Running -> GameOver，只会执行一次
func (s *Session) endGame() {
	if s.phase != PhaseRunning {
		return
	}
	var winner *Player
	for _, p := range s.registry.Players() {
		if p.Active() {
			winner = p
			break
		}
	}
	msg := "Game over! No winner this time."
	if winner != nil {
		msg = fmt.Sprintf("Game over! %s wins!", winner.Username)
	}

	s.stopTicker()
	clear(s.intents)
	s.phase = PhaseGameOver
	s.registry.ResetAll()
	s.metrics.IncGamesOver()
	s.log.Infof("game over after %d ticks: %s", s.tickSeq, msg)
	s.transport.Broadcast(EvGameOver, msg)
	s.transport.Broadcast(EvCurrentPlayers, s.registry.Snapshots())
}

// updateTuning 管理接口的热更新
func (s *Session) updateTuning(p TuningPatch) (Tuning, error) {
	t, err := s.tuning.Apply(p)
	if err != nil {
		return s.tuning, err
	}
	s.tuning = t
	if s.phase == PhaseRunning {
		s.ball.Vel = ClampSpeed(s.ball.Vel, t.MinSpeed, t.MaxSpeed)
	}
	s.log.Infof("tuning updated: %+v", t)
	return t, nil
}

// Status 会话概况
func (s *Session) Status() Status {
	return Status{
		Phase:   s.phase.String(),
		Players: s.registry.Len(),
		Ready:   s.registry.ReadyCount(),
		Tick:    s.tickSeq,
	}
}
