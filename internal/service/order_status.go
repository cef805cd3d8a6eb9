package service

import (
	"context"
	"strings"

	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"

	"gorm.io/gorm"
)

// orderTransitions 允许的订单状态流转
var orderTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusProcessing, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered},
}

// UpdateOrderStatusInput 后台更新订单状态输入
type UpdateOrderStatusInput struct {
	Status         string
	TrackingNumber string
	Location       string
}

// canTransition 判断订单状态能否从 from 流转到 to
func canTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus 更新订单状态并追加轨迹；取消已扣库存的订单时回补库存
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, input UpdateOrderStatusInput) (*models.Order, error) {
	target := strings.ToLower(strings.TrimSpace(input.Status))
	var updated *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrNotFound
		}
		if !canTransition(order.Status, target) {
			return ErrOrderStatusInvalid
		}

		now := s.now()
		if target == constants.OrderStatusCancelled && order.StockCommitted {
			productRepo := s.productRepo.WithTx(tx)
			for i := range order.Items {
				item := &order.Items[i]
				if _, err := productRepo.RestoreStock(item.ProductID, item.CommittedQuantity); err != nil {
					return err
				}
				if err := orderRepo.SetCommittedQuantity(item.ID, 0); err != nil {
					return err
				}
				item.CommittedQuantity = 0
			}
			order.StockCommitted = false
		}
		if target == constants.OrderStatusCancelled {
			order.CanceledAt = &now
		}
		if target == constants.OrderStatusShipped {
			if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
				order.TrackingNumber = tracking
			}
		}
		order.Status = target
		order.TrackingHistory = append(order.TrackingHistory, models.TrackingEvent{
			Status:    target,
			Location:  strings.TrimSpace(input.Location),
			Timestamp: now,
		})
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.SW("order_id", orderID).Infow("order_status_updated", "status", updated.Status)
	return updated, nil
}
