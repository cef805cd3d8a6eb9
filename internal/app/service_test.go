package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mara-shop/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
	onStop   func(name string)
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	if s.onStop != nil {
		s.onStop(s.name)
	}
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &fakeService{name: "failing", startErr: errors.New("boom")}
	blocking := &fakeService{name: "blocking", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("runner should surface start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	blocking := &fakeService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(blocking).Run(ctx, time.Second, nil)
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled runner should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if !blocking.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("nil runner should fail")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll {
		t.Fatalf("mode want %s got %s", ModeAll, opts.Mode)
	}
	if opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout want 10s got %s", opts.ShutdownTimeout)
	}
	if opts.Logger == nil {
		t.Fatalf("logger should default")
	}
}

func TestBuildRunnerRejectsBadInput(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
	if _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if _, err := BuildRunner(&config.Config{}, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
}

func TestNormalizeOptionsLowercasesMode(t *testing.T) {
	if got := normalizeOptions(Options{Mode: " API "}).Mode; got != ModeAPI {
		t.Fatalf("mode want api got %s", got)
	}
}

func TestRunnerStopsInReverseOrderThenRunsHooks(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}
	first := &fakeService{name: "first", block: true, onStop: record}
	second := &fakeService{name: "second", block: true, onStop: record}
	runner := NewRunner(first, second)
	runner.OnShutdown("db", func() error { record("db"); return nil })
	runner.OnShutdown("redis", func() error { record("redis"); return errors.New("close failed") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled runner should return nil, got %v", err)
	}
	want := []string{"second", "first", "redis", "db"}
	if len(order) != len(want) {
		t.Fatalf("shutdown order want %v got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("shutdown order want %v got %v", want, order)
		}
	}
}

func TestRunnerRejectsNilService(t *testing.T) {
	if err := NewRunner(&fakeService{name: "ok"}, nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("nil service should fail")
	}
}
