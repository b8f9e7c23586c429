package game

// 以下命令由连接协程或管理接口投递到 Session.Inbox，只在 Run 协程中执行

// Connect 新连接建立（此时还未加入）
type Connect struct {
	ConnID string
}

// SetUsername 请求加入
type SetUsername struct {
	ConnID   string
	Username string
}

// PlayerReady 标记准备
type PlayerReady struct {
	ConnID string
}

// StartGame 客户端倒计时结束
type StartGame struct {
	ConnID string
}

// Movement 移动意图，下一个 Tick 生效
type Movement struct {
	ConnID string
	Delta  Vec
}

// Disconnect 连接关闭
type Disconnect struct {
	ConnID string
}

// GetTuning 读取当前物理参数
type GetTuning struct {
	Reply chan<- Tuning
}

// UpdateTuning 部分更新物理参数
type UpdateTuning struct {
	Patch TuningPatch
	Reply chan<- TuningResult
}

// TuningResult UpdateTuning 的回执
type TuningResult struct {
	Tuning Tuning
	Err    error
}

// GetStatus 读取会话概况（阶段与人数），供监控接口使用
type GetStatus struct {
	Reply chan<- Status
}

// Status 会话概况
type Status struct {
	Phase   string `json:"phase"`
	Players int    `json:"players"`
	Ready   int    `json:"ready"`
	Tick    int64  `json:"tick"`
}
