package game

// 入站事件
const (
	EvSetUsername    = "setUsername"
	EvPlayerReady    = "playerReady"
	EvStartGame      = "startGame"
	EvPlayerMovement = "playerMovement"
)

// 出站事件
const (
	EvUserSet            = "userSet"
	EvUserExists         = "userExists"
	EvInvalidUsername    = "invalidUsername"
	EvLobbyFull          = "lobbyFull"
	EvWaiting            = "waiting"
	EvAllPlayersReady    = "allPlayersReady"
	EvGameIsStarted      = "gameIsStarted"
	EvGameStarting       = "gameStarting"
	EvPlayerMoved        = "playerMoved"
	EvCurrentPlayers     = "currentPlayers"
	EvPlayerStateChanged = "playerStateChanged"
	EvBallMoved          = "ballMoved"
	EvObstaclesUpdated   = "obstaclesUpdated"
	EvPlayerLostLife     = "playerLostLife"
	EvGameOver           = "gameOver"
)

// Transport 核心对传输层的全部依赖：单播与广播，发送不阻塞
type Transport interface {
	Send(connID, event string, payload any)
	Broadcast(event string, payload any)
}

// UserSet 加入成功的回执
type UserSet struct {
	Username string `json:"username"`
	Position Vec    `json:"position"`
}

// LifeLost 丢命通知
type LifeLost struct {
	ID    string `json:"id"`
	Lives int    `json:"lives"`
}
