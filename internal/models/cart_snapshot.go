package models

import "time"

// CartSnapshot 购物车序列化快照（按会话存储）
type CartSnapshot struct {
	SessionKey string    `gorm:"primarykey;type:varchar(128)" json:"session_key"` // 会话标识
	Payload    []byte    `gorm:"not null" json:"-"`                              // 序列化内容
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                        // 更新时间
}

// TableName 指定表名
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
