package public

import (
	"context"

	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加购请求
type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// GetCart 获取购物车（行、汇总与件数）
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	detail, err := h.CartService.Detail(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, detail)
}

// GetCartCount 获取购物车件数
func (h *Handler) GetCartCount(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	count, err := h.CartService.ItemCount(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"item_count": count})
}

// AddCartItem 加入购物车，未传数量时默认为 1
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	detail, err := h.CartService.AddItem(c.Request.Context(), sessionID, service.AddCartItemInput{
		ProductID: req.ProductID,
		Quantity:  quantity,
		Color:     req.Color,
		Size:      req.Size,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, detail)
}

// IncrementCartItem 数量加一
func (h *Handler) IncrementCartItem(c *gin.Context) {
	h.mutateCartItem(c, h.CartService.IncrementItem)
}

// DecrementCartItem 数量减一
func (h *Handler) DecrementCartItem(c *gin.Context) {
	h.mutateCartItem(c, h.CartService.DecrementItem)
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	h.mutateCartItem(c, h.CartService.RemoveItem)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	detail, err := h.CartService.Clear(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, detail)
}

type cartItemMutation func(ctx context.Context, sessionKey, productID string) (*service.CartDetail, error)

func (h *Handler) mutateCartItem(c *gin.Context, fn cartItemMutation) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	detail, err := fn(c.Request.Context(), sessionID, c.Param("product_id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, detail)
}
