package cart

import (
	"errors"

	"github.com/mara-shop/internal/models"

	"github.com/shopspring/decimal"
)

// Pricing 运费与税率配置
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricing 商城默认配置：满 100 包邮，运费 10，税率 8%
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Validate 校验配置均为非负数
func (p Pricing) Validate() error {
	if p.FreeShippingThreshold.IsNegative() {
		return errors.New("cart: free shipping threshold must not be negative")
	}
	if p.ShippingFee.IsNegative() {
		return errors.New("cart: shipping fee must not be negative")
	}
	if p.TaxRate.IsNegative() {
		return errors.New("cart: tax rate must not be negative")
	}
	return nil
}

// SummaryLine 汇总中的单行明细
type SummaryLine struct {
	ProductID      string
	Name           string
	Quantity       int
	Variant        *Variant
	UnitPrice      decimal.Decimal
	Discount       decimal.Decimal
	EffectivePrice decimal.Decimal
	LineTotal      decimal.Decimal
	Stale          bool
}

// Summary 购物车金额汇总，全部为完整精度，展示时再取两位小数
type Summary struct {
	Lines                 []SummaryLine
	ItemCount             int
	Subtotal              decimal.Decimal
	Shipping              decimal.Decimal
	Tax                   decimal.Decimal
	Total                 decimal.Decimal
	FreeShippingRemaining decimal.Decimal
	StaleProductIDs       []string
}

// Equal 比较两个汇总的金额与明细是否一致
func (s Summary) Equal(other Summary) bool {
	if len(s.Lines) != len(other.Lines) || len(s.StaleProductIDs) != len(other.StaleProductIDs) {
		return false
	}
	for i := range s.Lines {
		a, b := s.Lines[i], other.Lines[i]
		if a.ProductID != b.ProductID || a.Name != b.Name || a.Quantity != b.Quantity || a.Stale != b.Stale ||
			!a.Variant.equal(b.Variant) ||
			!a.UnitPrice.Equal(b.UnitPrice) || !a.Discount.Equal(b.Discount) ||
			!a.LineTotal.Equal(b.LineTotal) || !a.EffectivePrice.Equal(b.EffectivePrice) {
			return false
		}
	}
	for i := range s.StaleProductIDs {
		if s.StaleProductIDs[i] != other.StaleProductIDs[i] {
			return false
		}
	}
	return s.ItemCount == other.ItemCount &&
		s.Subtotal.Equal(other.Subtotal) &&
		s.Shipping.Equal(other.Shipping) &&
		s.Tax.Equal(other.Tax) &&
		s.Total.Equal(other.Total) &&
		s.FreeShippingRemaining.Equal(other.FreeShippingRemaining)
}

// priceLine 按商品当前数据计算单行金额
func priceLine(line Line, product *models.Product) SummaryLine {
	if product == nil {
		return SummaryLine{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			Variant:        line.Variant.clone(),
			UnitPrice:      decimal.Zero,
			Discount:       decimal.Zero,
			EffectivePrice: decimal.Zero,
			LineTotal:      decimal.Zero,
			Stale:          true,
		}
	}
	effective := product.EffectivePrice()
	return SummaryLine{
		ProductID:      line.ProductID,
		Name:           product.Name,
		Quantity:       line.Quantity,
		Variant:        line.Variant.clone(),
		UnitPrice:      product.Price.Decimal,
		Discount:       product.Discount,
		EffectivePrice: effective,
		LineTotal:      effective.Mul(decimal.NewFromInt(int64(line.Quantity))),
	}
}

// summarize 汇总小计、运费、税费与总额
// 失效行（商品已下架/删除）不计入金额；没有可计价行时运费为 0。
func (p Pricing) summarize(lines []SummaryLine) Summary {
	summary := Summary{
		Lines:                 lines,
		Subtotal:              decimal.Zero,
		Shipping:              decimal.Zero,
		Tax:                   decimal.Zero,
		Total:                 decimal.Zero,
		FreeShippingRemaining: decimal.Zero,
	}
	priced := 0
	for _, line := range lines {
		summary.ItemCount += line.Quantity
		if line.Stale {
			summary.StaleProductIDs = append(summary.StaleProductIDs, line.ProductID)
			continue
		}
		priced++
		summary.Subtotal = summary.Subtotal.Add(line.LineTotal)
	}
	if priced > 0 && summary.Subtotal.LessThan(p.FreeShippingThreshold) {
		summary.Shipping = p.ShippingFee
		summary.FreeShippingRemaining = p.FreeShippingThreshold.Sub(summary.Subtotal)
	}
	summary.Tax = summary.Subtotal.Mul(p.TaxRate)
	summary.Total = summary.Subtotal.Add(summary.Shipping).Add(summary.Tax)
	return summary
}
