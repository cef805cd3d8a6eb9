package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/queue"
	"github.com/mara-shop/internal/repository"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// OrderPlacedEnqueuer 下单任务投递
type OrderPlacedEnqueuer interface {
	Enabled() bool
	EnqueueOrderPlaced(payload queue.OrderPlacedPayload, opts ...asynq.Option) error
}

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	carts       *CartService
	queueClient OrderPlacedEnqueuer
	now         func() time.Time
}

// NewOrderService 创建订单服务，queueClient 可为 nil（此时同步处理下单任务）
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, carts *CartService, queueClient OrderPlacedEnqueuer) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	SessionKey    string
	Email         string
	PaymentMethod string
	Shipping      models.ShippingAddress
	Notes         string
}

// CheckoutResult 结算结果
type CheckoutResult struct {
	Order *models.Order `json:"order"`
	// Warning 清空购物车时持久化失败
	Warning string `json:"warning,omitempty"`
}

// Checkout 将会话购物车转为订单并清空购物车
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	shipping, err := normalizeShipping(input.Shipping)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := normalizePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// 会话锁覆盖汇总、建单与清空购物车，重复提交会看到空购物车
	var result *CheckoutResult
	err = s.carts.WithSession(ctx, input.SessionKey, func(engine *cart.Engine) error {
		summary, err := engine.ComputeSummary(ctx)
		if err != nil {
			return err
		}
		if len(summary.Lines) == 0 {
			return ErrCartEmpty
		}
		if len(summary.StaleProductIDs) > 0 {
			return ErrCartHasStale
		}

		now := s.now()
		order := &models.Order{
			OrderNo:         generateOrderNo(now),
			SessionKey:      strings.TrimSpace(input.SessionKey),
			Email:           email,
			Status:          constants.OrderStatusPending,
			PaymentMethod:   paymentMethod,
			ShippingAddress: shipping,
			Subtotal:        models.NewMoneyFromDecimal(summary.Subtotal),
			Shipping:        models.NewMoneyFromDecimal(summary.Shipping),
			Tax:             models.NewMoneyFromDecimal(summary.Tax),
			Total:           models.NewMoneyFromDecimal(summary.Total),
			TrackingHistory: models.TrackingHistory{{Status: constants.OrderStatusPending, Timestamp: now}},
			Notes:           strings.TrimSpace(input.Notes),
		}
		items := buildOrderItems(summary)

		if err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
			return s.orderRepo.WithTx(tx).Create(order, items)
		}); err != nil {
			return err
		}
		logger.Infow("order_created",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"total", order.Total.String(),
			"items", len(items),
		)

		result = &CheckoutResult{Order: order}
		if err := engine.Clear(ctx); err != nil {
			logger.Warnw("order_cart_clear_failed", "order_no", order.OrderNo, "error", err)
			result.Warning = err.Error()
		} else if err := s.carts.release(ctx, order.SessionKey); err != nil {
			logger.Warnw("order_cart_release_failed", "order_no", order.OrderNo, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchOrderPlaced(ctx, result.Order)
	return result, nil
}

// dispatchOrderPlaced 投递下单任务；队列未启用或投递失败时同步处理
func (s *OrderService) dispatchOrderPlaced(ctx context.Context, order *models.Order) {
	payload := queue.OrderPlacedPayload{OrderID: order.ID, OrderNo: order.OrderNo}
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderPlaced(payload)
		if err == nil {
			return
		}
		logger.Warnw("order_enqueue_placed_failed", "order_id", order.ID, "error", err)
	}
	if err := s.ProcessPlacedOrder(ctx, order.ID); err != nil {
		logger.Errorw("order_process_placed_failed", "order_id", order.ID, "error", err)
		return
	}
	if refreshed, err := s.orderRepo.GetByID(order.ID); err == nil && refreshed != nil {
		*order = *refreshed
	}
}

// ProcessPlacedOrder 扣减库存并将订单推进到 processing，重复调用不会重复扣减
func (s *OrderService) ProcessPlacedOrder(ctx context.Context, orderID uint) error {
	return s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrNotFound
		}
		if order.StockCommitted || order.Status == constants.OrderStatusCancelled {
			return nil
		}
		for i := range order.Items {
			item := &order.Items[i]
			deducted, err := productRepo.DeductStock(item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("deduct stock for %s: %w", item.ProductID, err)
			}
			if deducted < item.Quantity {
				logger.Warnw("order_stock_short",
					"order_id", order.ID,
					"product_id", item.ProductID,
					"ordered", item.Quantity,
					"deducted", deducted,
				)
			}
			if err := orderRepo.SetCommittedQuantity(item.ID, deducted); err != nil {
				return err
			}
			item.CommittedQuantity = deducted
		}

		now := s.now()
		order.StockCommitted = true
		if order.Status == constants.OrderStatusPending {
			order.Status = constants.OrderStatusProcessing
			order.TrackingHistory = append(order.TrackingHistory, models.TrackingEvent{
				Status:    constants.OrderStatusProcessing,
				Timestamp: now,
			})
		}
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		logger.Infow("order_stock_committed", "order_id", order.ID, "order_no", order.OrderNo, "status", order.Status)
		return nil
	})
}

func buildOrderItems(summary cart.Summary) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		item := models.OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  models.NewMoneyFromDecimal(line.EffectivePrice),
			Quantity:   line.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(line.LineTotal),
		}
		if line.Variant != nil {
			item.Color = line.Variant.Color
			item.Size = line.Variant.Size
		}
		items = append(items, item)
	}
	return items
}

func normalizeEmail(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", ErrEmailInvalid
	}
	return value, nil
}

func normalizeShipping(address models.ShippingAddress) (models.ShippingAddress, error) {
	normalized := models.ShippingAddress{
		FullName: strings.TrimSpace(address.FullName),
		Street:   strings.TrimSpace(address.Street),
		City:     strings.TrimSpace(address.City),
		State:    strings.TrimSpace(address.State),
		ZipCode:  strings.TrimSpace(address.ZipCode),
		Country:  strings.TrimSpace(address.Country),
		Phone:    strings.TrimSpace(address.Phone),
	}
	for _, field := range []string{
		normalized.FullName,
		normalized.Street,
		normalized.City,
		normalized.State,
		normalized.ZipCode,
		normalized.Country,
		normalized.Phone,
	} {
		if field == "" {
			return models.ShippingAddress{}, ErrShippingInvalid
		}
	}
	return normalized, nil
}

func normalizePaymentMethod(raw string) (string, error) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case constants.PaymentMethodCreditCard, constants.PaymentMethodPaypal, constants.PaymentMethodStripe:
		return value, nil
	default:
		return "", ErrPaymentMethodInvalid
	}
}

func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("%s%s%s", constants.OrderNoPrefix, now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
