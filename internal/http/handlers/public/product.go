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

// ProductView 前台商品响应结构
type ProductView struct {
	models.Product
	EffectivePrice models.Money `json:"effective_price"`
	InStock        bool         `json:"in_stock"`
}

func toProductView(product *models.Product) ProductView {
	return ProductView{
		Product:        *product,
		EffectivePrice: models.NewMoneyFromDecimal(product.EffectivePrice()),
		InStock:        product.Stock > 0,
	}
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	products, total, err := h.ProductService.ListPublic(service.PublicProductQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Featured: handlershared.QueryBool(c, "featured"),
		IsNew:    handlershared.QueryBool(c, "new"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i]))
	}
	response.SuccessWithPage(c, views, response.NewPagination(page, pageSize, total))
}

// GetProduct 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.GetPublic(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, toProductView(product))
}

// GetCategories 获取商品分类
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.ProductService.Categories()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}
