package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"arenapong/game"
)

// adminTimeout 会话循环应答的最长等待时间
const adminTimeout = 2 * time.Second

// HandleGetTuning 返回当前物理参数
// GET /admin/tuning
func (s *Server) HandleGetTuning(w http.ResponseWriter, r *http.Request) {
	reply := make(chan game.Tuning, 1)
	t, err := ask[game.Tuning](r, s.session, game.GetTuning{Reply: reply}, reply)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleUpdateTuning 以 JSON 载荷部分更新物理参数，未给出的字段保持不变
// POST /admin/tuning {"maxSpeed": 12}
func (s *Server) HandleUpdateTuning(w http.ResponseWriter, r *http.Request) {
	var patch game.TuningPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	reply := make(chan game.TuningResult, 1)
	res, err := ask[game.TuningResult](r, s.session, game.UpdateTuning{Patch: patch, Reply: reply}, reply)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if res.Err != nil {
		if errors.Is(res.Err, game.ErrInvalidTuning) {
			http.Error(w, res.Err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, res.Err.Error(), http.StatusInternalServerError)
		return
	}
	Log.Infof("tuning updated via admin from %s: %+v", r.RemoteAddr, res.Tuning)
	writeJSON(w, http.StatusOK, res.Tuning)
}

// ask 把查询命令投递到会话循环并等待应答
func ask[T any](r *http.Request, session *game.Session, cmd any, reply <-chan T) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
	defer cancel()
	if err := session.Submit(ctx, cmd); err != nil {
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
