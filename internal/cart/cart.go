package cart

import (
	"context"
	"strings"

	"github.com/mara-shop/internal/models"
)

// Catalog 商品目录（只读）
// 商品不存在时返回 nil, nil。
type Catalog interface {
	Lookup(ctx context.Context, productID string) (*models.Product, error)
}

// Persistence 购物车序列化数据的存取能力
// 数据不存在时 Load 返回 nil, nil。
type Persistence interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}

// Store 按会话划分的持久化存储
type Store interface {
	Session(key string) Persistence
}

// Deleter 可删除整个会话数据的存储
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Variant 加购时选择的规格
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// IsZero 是否未选择任何规格
func (v *Variant) IsZero() bool {
	return v == nil || (strings.TrimSpace(v.Color) == "" && strings.TrimSpace(v.Size) == "")
}

func (v *Variant) clone() *Variant {
	if v.IsZero() {
		return nil
	}
	return &Variant{
		Color: strings.TrimSpace(v.Color),
		Size:  strings.TrimSpace(v.Size),
	}
}

func (v *Variant) equal(other *Variant) bool {
	a, b := v.clone(), other.clone()
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Line 购物车行
type Line struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Variant   *Variant `json:"variant,omitempty"`
}

func (l Line) clone() Line {
	l.Variant = l.Variant.clone()
	return l
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, line := range lines {
		out[i] = line.clone()
	}
	return out
}
