package models

import "time"

// OrderItem 订单项表（下单时的商品快照）
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID  string    `gorm:"type:varchar(64);index;not null" json:"product_id"`       // 商品ID
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`                  // 商品名称快照
	Color      string    `gorm:"type:varchar(64)" json:"color,omitempty"`                 // 颜色
	Size       string    `gorm:"type:varchar(64)" json:"size,omitempty"`                  // 尺码
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 折后单价
	Quantity   int       `gorm:"not null" json:"quantity"`                                // 数量
	TotalPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	// CommittedQuantity 实际扣减的库存数量，取消订单时按此回补
	CommittedQuantity int       `gorm:"not null;default:0" json:"committed_quantity"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt         time.Time `json:"updated_at"`              // 更新时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
