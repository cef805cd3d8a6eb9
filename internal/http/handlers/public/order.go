package public

import (
	"errors"
	"strings"

	handlershared "github.com/mara-shop/internal/http/handlers/shared"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	Email           string                 `json:"email" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes"`
}

// Checkout 将当前购物车转为订单
func (h *Handler) Checkout(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	result, err := h.OrderService.Checkout(c.Request.Context(), service.CheckoutInput{
		SessionKey:    sessionID,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.ShippingAddress,
		Notes:         req.Notes,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("order_checkout_completed",
		"order_id", result.Order.ID,
		"order_no", result.Order.OrderNo,
		"total", result.Order.Total.String(),
	)
	response.Success(c, result)
}

// TrackOrder 按订单号与邮箱查询订单
func (h *Handler) TrackOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Query("order_no"))
	email := strings.TrimSpace(c.Query("email"))
	if orderNo == "" || email == "" {
		respondError(c, response.CodeBadRequest, "order_no and email are required", nil)
		return
	}
	order, err := h.OrderService.Track(orderNo, email)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, order)
}

// ListSessionOrders 当前购物车会话下的订单
func (h *Handler) ListSessionOrders(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	orders, total, err := h.OrderService.ListBySession(sessionID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
