package cart

import (
	"encoding/json"

	"github.com/mara-shop/internal/models"
)

// SummaryLineView 展示用单行明细（金额保留两位小数）
type SummaryLineView struct {
	ProductID      string       `json:"product_id"`
	Name           string       `json:"name,omitempty"`
	Quantity       int          `json:"quantity"`
	Variant        *Variant     `json:"variant,omitempty"`
	UnitPrice      models.Money `json:"unit_price"`
	Discount       string       `json:"discount,omitempty"`
	EffectivePrice models.Money `json:"effective_price"`
	LineTotal      models.Money `json:"line_total"`
	Stale          bool         `json:"stale,omitempty"`
}

// SummaryView 展示用汇总
type SummaryView struct {
	Lines                 []SummaryLineView `json:"lines"`
	ItemCount             int               `json:"item_count"`
	Subtotal              models.Money      `json:"subtotal"`
	Shipping              models.Money      `json:"shipping"`
	Tax                   models.Money      `json:"tax"`
	Total                 models.Money      `json:"total"`
	FreeShippingRemaining models.Money      `json:"free_shipping_remaining"`
	StaleProductIDs       []string          `json:"stale_product_ids,omitempty"`
}

// View 转换为展示结构，仅在此处取整
func (s Summary) View() SummaryView {
	lines := make([]SummaryLineView, 0, len(s.Lines))
	for _, line := range s.Lines {
		item := SummaryLineView{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			Variant:        line.Variant,
			UnitPrice:      models.NewMoneyFromDecimal(line.UnitPrice),
			EffectivePrice: models.NewMoneyFromDecimal(line.EffectivePrice),
			LineTotal:      models.NewMoneyFromDecimal(line.LineTotal),
			Stale:          line.Stale,
		}
		if line.Discount.IsPositive() {
			item.Discount = line.Discount.String()
		}
		lines = append(lines, item)
	}
	return SummaryView{
		Lines:                 lines,
		ItemCount:             s.ItemCount,
		Subtotal:              models.NewMoneyFromDecimal(s.Subtotal),
		Shipping:              models.NewMoneyFromDecimal(s.Shipping),
		Tax:                   models.NewMoneyFromDecimal(s.Tax),
		Total:                 models.NewMoneyFromDecimal(s.Total),
		FreeShippingRemaining: models.NewMoneyFromDecimal(s.FreeShippingRemaining),
		StaleProductIDs:       s.StaleProductIDs,
	}
}

// MarshalJSON 输出展示结构
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}
