package queue

import (
	"testing"

	"github.com/mara-shop/internal/config"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should report disabled")
	}
	if err := client.EnqueueOrderPlaced(OrderPlacedPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestOrderPlacedTaskRoundTrip(t *testing.T) {
	task, err := NewOrderPlacedTask(OrderPlacedPayload{OrderID: 7, OrderNo: "MR1"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskOrderPlaced {
		t.Fatalf("task type want %s got %s", TaskOrderPlaced, task.Type())
	}
	payload, err := ParseOrderPlacedPayload(task.Payload())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if payload.OrderID != 7 || payload.OrderNo != "MR1" {
		t.Fatalf("payload mismatch: %+v", payload)
	}

	if _, err := NewOrderPlacedTask(OrderPlacedPayload{}); err == nil {
		t.Fatalf("missing order id should be rejected")
	}
	if _, err := ParseOrderPlacedPayload([]byte(`{"order_no":"x"}`)); err == nil {
		t.Fatalf("payload without order id should be rejected")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("default addr mismatch: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 2 {
		t.Fatalf("default server config mismatch: %+v", cfg)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, Concurrency: 3, Queues: map[string]int{"default": 1}})
	if opt.Addr != "redis:6380" || cfg.Concurrency != 3 || len(cfg.Queues) != 1 {
		t.Fatalf("custom server config mismatch: %s %+v", opt.Addr, cfg)
	}
}
