package admin

import (
	"strings"

	handlershared "github.com/mara-shop/internal/http/handlers/shared"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Stock       *int            `json:"stock"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Featured    bool            `json:"featured"`
	IsNew       bool            `json:"new"`
	IsActive    *bool           `json:"is_active"`
	SortOrder   int             `json:"sort_order"`
}

func (r ProductRequest) toInput() service.CreateProductInput {
	return service.CreateProductInput{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Discount:    r.Discount,
		Category:    r.Category,
		Images:      r.Images,
		Colors:      r.Colors,
		Sizes:       r.Sizes,
		Stock:       r.Stock,
		Rating:      r.Rating,
		Reviews:     r.Reviews,
		Featured:    r.Featured,
		IsNew:       r.IsNew,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// ListProducts 后台商品列表（含下架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	products, total, err := h.ProductService.ListAdmin(
		strings.TrimSpace(c.Query("category")),
		strings.TrimSpace(c.Query("search")),
		page,
		pageSize,
	)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 后台商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.GetAdminByID(c.Param("id"))
	if err != nil {
		respondProductError(c, err, "product fetch failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondProductError(c, err, "product create failed")
		return
	}
	requestLog(c).Infow("admin_product_created", "product_id", product.ID)
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondProductError(c, err, "product update failed")
		return
	}
	requestLog(c).Infow("admin_product_updated", "product_id", product.ID)
	response.Success(c, product)
}

// DeleteProduct 删除商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondProductError(c, err, "product delete failed")
		return
	}
	requestLog(c).Infow("admin_product_deleted", "product_id", id)
	response.Success(c, gin.H{"deleted": true})
}
