package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/provider"
	"github.com/mara-shop/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func newTestConsumer(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:worker_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := &config.Config{
		Cart: config.CartConfig{
			Store:                 constants.CartStoreMemory,
			FreeShippingThreshold: "100",
			ShippingFee:           "10",
			TaxRate:               "0.08",
			SnapshotRetentionDays: 7,
		},
		Session: config.SessionConfig{Secret: "worker-test"},
	}
	container, err := provider.Build(cfg, db, nil)
	if err != nil {
		t.Fatalf("build container failed: %v", err)
	}
	return NewConsumer(container), db
}

func TestHandleOrderPlacedCommitsStock(t *testing.T) {
	consumer, db := newTestConsumer(t)
	product := &models.Product{ID: "1", Name: "Headphones", Price: models.MustMoney("299.99"), Stock: 5, IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	order := &models.Order{
		OrderNo:       "MR1",
		Status:        constants.OrderStatusPending,
		PaymentMethod: constants.PaymentMethodPaypal,
	}
	items := []models.OrderItem{{ProductID: "1", Name: "Headphones", Quantity: 2}}
	if err := consumer.OrderRepo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task, err := queue.NewOrderPlacedTask(queue.OrderPlacedPayload{OrderID: order.ID, OrderNo: order.OrderNo})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := consumer.handleOrderPlaced(context.Background(), task); err != nil {
			t.Fatalf("handle order placed failed: %v", err)
		}
	}

	stored, _ := consumer.ProductRepo.GetByID("1")
	if stored.Stock != 3 {
		t.Fatalf("stock want 3 got %d", stored.Stock)
	}
	updated, _ := consumer.OrderRepo.GetByID(order.ID)
	if updated.Status != constants.OrderStatusProcessing || !updated.StockCommitted {
		t.Fatalf("order not advanced: %+v", updated)
	}
}

func TestHandleOrderPlacedSkipsMissingOrder(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	task, _ := queue.NewOrderPlacedTask(queue.OrderPlacedPayload{OrderID: 42})
	if err := consumer.handleOrderPlaced(context.Background(), task); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
}

func TestHandleOrderPlacedBadPayloadSkipsRetry(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	err := consumer.handleOrderPlaced(context.Background(), asynq.NewTask(queue.TaskOrderPlaced, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload should skip retry, got %v", err)
	}
}

func TestHandleCartSnapshotPurge(t *testing.T) {
	consumer, db := newTestConsumer(t)
	ctx := context.Background()
	if err := consumer.CartSnapshotRepo.Upsert(ctx, "old", []byte("[]")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := db.Model(&models.CartSnapshot{}).Where("session_key = ?", "old").
		UpdateColumn("updated_at", time.Now().AddDate(0, 0, -30)).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	if err := consumer.CartSnapshotRepo.Upsert(ctx, "fresh", []byte("[]")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	task, _ := queue.NewCartSnapshotPurgeTask(queue.CartSnapshotPurgePayload{})
	if err := consumer.handleCartSnapshotPurge(ctx, task); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if snapshot, _ := consumer.CartSnapshotRepo.Get(ctx, "old"); snapshot != nil {
		t.Fatalf("old snapshot should be purged")
	}
	if snapshot, _ := consumer.CartSnapshotRepo.Get(ctx, "fresh"); snapshot == nil {
		t.Fatalf("fresh snapshot should survive")
	}
}

func TestNewServiceRequiresQueue(t *testing.T) {
	if _, err := NewService(&config.QueueConfig{Enabled: false}, &Consumer{}); err == nil {
		t.Fatalf("disabled queue should be rejected")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("nil consumer should be rejected")
	}
}
