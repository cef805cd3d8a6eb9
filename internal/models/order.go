package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ShippingAddress 收货信息
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Value 实现 driver.Valuer 接口
func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	return scanJSON(value, a)
}

// TrackingEvent 物流/状态轨迹
type TrackingEvent struct {
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingHistory 轨迹列表
type TrackingHistory []TrackingEvent

// Value 实现 driver.Valuer 接口
func (h TrackingHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal([]TrackingEvent{})
	}
	return json.Marshal([]TrackingEvent(h))
}

// Scan 实现 sql.Scanner 接口
func (h *TrackingHistory) Scan(value interface{}) error {
	if value == nil {
		*h = TrackingHistory{}
		return nil
	}
	return scanJSON(value, h)
}

// Order 订单表
type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo         string          `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	SessionKey      string          `gorm:"type:varchar(128);index" json:"-"`                             // 下单购物车会话
	Email           string          `gorm:"type:varchar(255);index" json:"email,omitempty"`               // 联系邮箱
	Status          string          `gorm:"index;not null" json:"status"`                                 // 订单状态
	PaymentMethod   string          `gorm:"type:varchar(32);not null" json:"payment_method"`              // 支付方式
	ShippingAddress ShippingAddress `gorm:"type:json" json:"shipping_address"`                            // 收货信息
	Subtotal        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 小计
	Shipping        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`        // 运费
	Tax             Money           `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`             // 税费
	Total           Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total"`           // 总额
	TrackingNumber  string          `gorm:"type:varchar(128)" json:"tracking_number,omitempty"`           // 物流单号
	TrackingHistory TrackingHistory `gorm:"type:json" json:"tracking_history"`                            // 状态轨迹
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`                             // 备注
	StockCommitted  bool            `gorm:"not null;default:false" json:"stock_committed"`                // 是否已扣减库存
	CanceledAt      *time.Time      `gorm:"index" json:"canceled_at,omitempty"`                           // 取消时间
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time       `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`                                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
