package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/mara-shop/internal/http/handlers/shared"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/repository"
	"github.com/mara-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
	Location       string `json:"location"`
}

// ListOrders 后台订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_from is invalid", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_to is invalid", err)
		return
	}
	orders, total, err := h.OrderService.ListAdmin(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      c.Query("status"),
		OrderNo:     c.Query("order_no"),
		Email:       c.Query("email"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 后台订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(orderID)
	if err != nil {
		respondOrderError(c, err, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	order, err := h.OrderService.UpdateStatus(c.Request.Context(), orderID, service.UpdateOrderStatusInput{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Location:       req.Location,
	})
	if err != nil {
		respondOrderError(c, err, "order update failed")
		return
	}
	requestLog(c).Infow("admin_order_status_updated", "order_id", order.ID, "status", order.Status)
	response.Success(c, order)
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "order id is invalid", nil)
		return 0, false
	}
	return uint(id), true
}
