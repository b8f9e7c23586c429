package game

import "sync/atomic"

// Metrics 记录会话运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount       int64 // Tick 次数
	IntentsAccepted int64 // 被接受的移动意图
	IntentsIgnored  int64 // 未知连接的移动意图
	InboxDropped    int64 // 因收件箱满被丢弃的移动意图
	Rejections      int64 // 加入被拒绝次数
	LivesLost       int64 // 丢命次数
	GamesStarted    int64 // 开局次数
	GamesOver       int64 // 结束次数
	TotalTickNs     int64 // Tick 累计耗时（纳秒）
}

func (m *Metrics) IncAccepted()     { atomic.AddInt64(&m.IntentsAccepted, 1) }
func (m *Metrics) IncIgnored()      { atomic.AddInt64(&m.IntentsIgnored, 1) }
func (m *Metrics) IncInboxDropped() { atomic.AddInt64(&m.InboxDropped, 1) }
func (m *Metrics) IncRejections()   { atomic.AddInt64(&m.Rejections, 1) }
func (m *Metrics) IncLivesLost()    { atomic.AddInt64(&m.LivesLost, 1) }
func (m *Metrics) IncGamesStarted() { atomic.AddInt64(&m.GamesStarted, 1) }
func (m *Metrics) IncGamesOver()    { atomic.AddInt64(&m.GamesOver, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":       tick,
		"intents_accepted": atomic.LoadInt64(&m.IntentsAccepted),
		"intents_ignored":  atomic.LoadInt64(&m.IntentsIgnored),
		"inbox_dropped":    atomic.LoadInt64(&m.InboxDropped),
		"rejections":       atomic.LoadInt64(&m.Rejections),
		"lives_lost":       atomic.LoadInt64(&m.LivesLost),
		"games_started":    atomic.LoadInt64(&m.GamesStarted),
		"games_over":       atomic.LoadInt64(&m.GamesOver),
		"avg_tick_ms":      avgMs,
	}
}
