package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenapong/config"
	"arenapong/game"
	"arenapong/server"
)

// ArenaPong 入口：加载配置，启动会话循环与 HTTP + WebSocket 服务
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	flag.Parse()

	if err := server.InitLogger(server.LogOptions{File: cfg.LogFile, Level: cfg.LogLevel, Stderr: cfg.LogStderr}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer server.SyncLogger()
	if cfg.EnvFileErr != nil {
		server.Log.Debugf("no .env loaded: %v", cfg.EnvFileErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns := server.NewConnManager()
	session := game.NewSession(conns, game.Options{
		TickHz:        cfg.TickHz,
		Countdown:     cfg.Countdown,
		CountdownMode: game.CountdownMode(cfg.CountdownMode),
		Logger:        server.Log.Named("session"),
	})
	done := make(chan struct{})
	go func() {
		session.Run(ctx)
		close(done)
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(ctx, session, conns, cfg.StaticDir).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		server.Log.Infof("ArenaPong listening on %s (tick=%dHz countdown=%s/%s); open http://localhost%v/",
			cfg.Addr, cfg.TickHz, cfg.Countdown, cfg.CountdownMode, cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnf("shutdown: %v", err)
	}
	<-done
}
