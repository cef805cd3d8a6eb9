package worker

import (
	"context"
	"errors"
	"time"

	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/provider"
	"github.com/mara-shop/internal/queue"
	"github.com/mara-shop/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPlaced, c.handleOrderPlaced)
	mux.HandleFunc(queue.TaskCartSnapshotPurge, c.handleCartSnapshotPurge)
}

func (c *Consumer) handleOrderPlaced(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_placed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderPlacedPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_order_placed_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_placed_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.OrderService.ProcessPlacedOrder(ctx, payload.OrderID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_order_placed_skip_order_not_found", "order_id", payload.OrderID, "order_no", payload.OrderNo)
			return nil
		}
		logger.Warnw("worker_order_placed_failed", "order_id", payload.OrderID, "order_no", payload.OrderNo, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCartSnapshotPurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCartSnapshotPurgePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_cart_purge_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	days := payload.RetentionDays
	if days <= 0 && c.Config != nil {
		days = c.Config.Cart.SnapshotRetentionDays
	}
	if days <= 0 || c.CartSnapshotRepo == nil {
		logger.Debugw("worker_cart_purge_skip_disabled", "retention_days", days)
		return nil
	}
	before := time.Now().AddDate(0, 0, -days)
	purged, err := c.CartSnapshotRepo.PurgeBefore(ctx, before)
	if err != nil {
		logger.Warnw("worker_cart_purge_failed", "error", err)
		return err
	}
	logger.Infow("worker_cart_purge_done", "purged", purged, "before", before)
	return nil
}
