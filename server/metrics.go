package server

import (
	"net/http"

	"arenapong/game"
)

// HandleMetrics 输出会话运行指标与在线连接数
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"connections": s.conns.Count(),
		"metrics":     s.session.Metrics().Snapshot(),
	}
	reply := make(chan game.Status, 1)
	if st, err := ask[game.Status](r, s.session, game.GetStatus{Reply: reply}, reply); err == nil {
		payload["session"] = st
	} else {
		Log.Warnf("metrics: session status unavailable: %v", err)
	}
	writeJSON(w, http.StatusOK, payload)
}
