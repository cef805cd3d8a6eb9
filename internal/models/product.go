package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Product 商品表
type Product struct {
	ID          string          `gorm:"primarykey;type:varchar(64)" json:"id"`                    // 商品ID（不透明字符串）
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`                   // 名称
	Description string          `gorm:"type:text" json:"description"`                             // 描述
	Price       Money           `gorm:"type:decimal(20,2);not null;default:0" json:"price"`       // 单价
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`     // 折扣百分比（0 表示无折扣）
	Category    string          `gorm:"type:varchar(100);index" json:"category"`                  // 分类名称
	Images      StringArray     `gorm:"type:json" json:"images"`                                  // 图片
	Colors      StringArray     `gorm:"type:json" json:"colors,omitempty"`                        // 可选颜色
	Sizes       StringArray     `gorm:"type:json" json:"sizes,omitempty"`                         // 可选尺码
	Stock       int             `gorm:"not null;default:0" json:"stock"`                          // 可用库存
	Rating      float64         `gorm:"not null;default:0" json:"rating"`                         // 评分
	Reviews     int             `gorm:"not null;default:0" json:"reviews"`                        // 评价数
	Featured    bool            `gorm:"default:false;index" json:"featured"`                      // 是否推荐
	IsNew       bool            `gorm:"column:is_new;default:false;index" json:"new"`             // 是否新品
	IsActive    bool            `gorm:"not null;index" json:"is_active"`                          // 是否上架
	SortOrder   int             `gorm:"default:0;index" json:"sort_order"`                        // 排序权重
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`                                               // 更新时间
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// HasDiscount 是否有折扣
func (p *Product) HasDiscount() bool {
	return p != nil && p.Discount.IsPositive()
}

// EffectivePrice 折后单价（完整精度，不取整）
func (p *Product) EffectivePrice() decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if !p.HasDiscount() {
		return p.Price.Decimal
	}
	return p.Price.Decimal.Mul(decimal.NewFromInt(1).Sub(p.Discount.Div(hundred)))
}
