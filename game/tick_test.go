package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunPlaysThroughCountdown(t *testing.T) {
	rec := &recorder{}
	s := NewSession(rec, Options{
		Logger:    zaptest.NewLogger(t).Sugar(),
		Rand:      rand.New(rand.NewSource(1)),
		TickHz:    100,
		Countdown: 20 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	for _, cmd := range []any{
		Connect{ConnID: "c1"},
		Connect{ConnID: "c2"},
		SetUsername{ConnID: "c1", Username: "alice"},
		SetUsername{ConnID: "c2", Username: "bob"},
		PlayerReady{ConnID: "c1"},
		PlayerReady{ConnID: "c2"},
	} {
		if err := s.Submit(ctx, cmd); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, "gameStarting", func() bool { return rec.count("", EvGameStarting) == 1 })
	waitFor(t, "ball updates", func() bool { return rec.count("", EvBallMoved) > 5 })

	if !s.Offer(Movement{ConnID: "c1", Delta: Vec{Y: -5}}) {
		t.Fatal("movement dropped with an empty inbox")
	}

	reply := make(chan Status, 1)
	if err := s.Submit(ctx, GetStatus{Reply: reply}); err != nil {
		t.Fatal(err)
	}
	st := <-reply
	if st.Phase != "running" || st.Players != 2 || st.Ready != 2 || st.Tick == 0 {
		t.Fatalf("status = %+v", st)
	}

	tr := make(chan TuningResult, 1)
	speed := 6.0
	_ = s.Submit(ctx, UpdateTuning{Patch: TuningPatch{MinSpeed: &speed}, Reply: tr})
	if res := <-tr; res.Err != nil || res.Tuning.MinSpeed != 6 {
		t.Fatalf("tuning result = %+v", res)
	}

	_ = s.Submit(ctx, Disconnect{ConnID: "c2"})
	waitFor(t, "gameOver", func() bool { return rec.count("", EvGameOver) == 1 })
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewSession(&recorder{}, Options{Logger: zaptest.NewLogger(t).Sugar()})
	s.startTicker()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if s.Ticking() {
		t.Fatal("ticker left running")
	}
}

func TestOfferDropsWhenInboxFull(t *testing.T) {
	s := NewSession(&recorder{}, Options{InboxSize: 1})
	if !s.Offer(Movement{ConnID: "c1"}) {
		t.Fatal("first offer should fit")
	}
	if s.Offer(Movement{ConnID: "c1"}) {
		t.Fatal("second offer should be dropped")
	}
	if got := s.Metrics().Snapshot()["inbox_dropped"]; got != int64(1) {
		t.Fatalf("inbox_dropped = %v", got)
	}
}

func TestSubmitHonoursContext(t *testing.T) {
	s := NewSession(&recorder{}, Options{InboxSize: 1})
	_ = s.Submit(context.Background(), Connect{ConnID: "c1"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Submit(ctx, Connect{ConnID: "c2"}); err == nil {
		t.Fatal("Submit on a full inbox should fail once ctx expires")
	}
}
