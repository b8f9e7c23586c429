package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"arenapong/game"
)

// Server 把一个会话暴露为 HTTP + WebSocket 服务
type Server struct {
	ctx       context.Context
	session   *game.Session
	conns     *ConnManager
	staticDir string
}

// New ctx 结束后读协程不再向会话投递命令
func New(ctx context.Context, session *game.Session, conns *ConnManager, staticDir string) *Server {
	return &Server{ctx: ctx, session: session, conns: conns, staticDir: staticDir}
}

// Router 路由表
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	// 管理与监控接口
	r.Get("/metrics", s.HandleMetrics)
	r.Get("/admin/tuning", s.HandleGetTuning)
	r.Post("/admin/tuning", s.HandleUpdateTuning)

	// 前后端分离：将 / 映射到静态资源目录
	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

// requestLogger 用 zap 记录每个请求
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			Log.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start),
				"reqID", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
