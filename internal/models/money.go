package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyPlaces 金额统一保留 2 位小数（四舍五入，远离零）
const moneyPlaces = 2

// Money 落库与输出用的金额类型。
// 金额计算使用 decimal.Decimal 保持完整精度，只在写入订单与返回接口时转换为 Money。
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyPlaces)}
}

// ParseMoney 从字符串解析金额
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, err
	}
	return NewMoneyFromDecimal(d), nil
}

// MustMoney 解析金额，失败时 panic，仅用于常量与种子数据
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String 返回定长 2 位小数，例如 "64.00"
func (m Money) String() string {
	return m.Decimal.StringFixed(moneyPlaces)
}

// MarshalJSON 以字符串输出，避免前端浮点误差
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 同时接受字符串与数字
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value 写库前再次取整
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyPlaces).Value()
}

// Scan 读库
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}
