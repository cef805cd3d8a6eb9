package cache

import (
	"context"
	"strings"
	"time"

	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"
)

// CachedCatalog 商品查询缓存，未命中时回源并回写
// 缓存读写失败只记录日志并回源，不影响购物车计算。
type CachedCatalog struct {
	source cart.Catalog
	ttl    time.Duration
}

// NewCachedCatalog 创建带缓存的商品目录，ttl <= 0 时直接回源
func NewCachedCatalog(source cart.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{source: source, ttl: ttl}
}

// Lookup 查询商品，不存在时返回 nil, nil（不缓存未命中）
func (c *CachedCatalog) Lookup(ctx context.Context, productID string) (*models.Product, error) {
	productID = strings.TrimSpace(productID)
	if !Enabled() || c.ttl <= 0 || productID == "" {
		return c.source.Lookup(ctx, productID)
	}

	var cached models.Product
	hit, err := GetJSON(ctx, productKey(productID), &cached)
	if err != nil {
		logger.Warnw("product_cache_read_failed", "product_id", productID, "error", err)
	} else if hit {
		return &cached, nil
	}

	product, err := c.source.Lookup(ctx, productID)
	if err != nil || product == nil {
		return product, err
	}
	if err := SetJSON(ctx, productKey(productID), product, c.ttl); err != nil {
		logger.Warnw("product_cache_write_failed", "product_id", productID, "error", err)
	}
	return product, nil
}

// Invalidate 删除商品缓存
func (c *CachedCatalog) Invalidate(ctx context.Context, productID string) error {
	return InvalidateProduct(ctx, productID)
}

// InvalidateProduct 删除商品缓存
func InvalidateProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil
	}
	return Del(ctx, productKey(productID))
}

func productKey(productID string) string {
	return "product:" + productID
}
