package service

import (
	"strings"

	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/repository"
)

// GetByID 获取订单详情
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// Track 游客按订单号与邮箱查询订单
func (s *OrderService) Track(orderNo, email string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	normalized, err := normalizeEmail(email)
	if err != nil || orderNo == "" {
		return nil, ErrNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndEmail(orderNo, normalized)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListBySession 当前购物车会话下的订单
func (s *OrderService) ListBySession(sessionKey string, page, pageSize int) ([]models.Order, int64, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, 0, ErrSessionRequired
	}
	return s.orderRepo.ListBySession(sessionKey, page, pageSize)
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.OrderNo = strings.TrimSpace(filter.OrderNo)
	filter.Email = strings.TrimSpace(filter.Email)
	return s.orderRepo.ListAdmin(filter)
}
