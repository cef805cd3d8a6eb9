package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/mara-shop/internal/models"

	"github.com/shopspring/decimal"
)

func TestDecodeLegacyArrayAndNormalize(t *testing.T) {
	data := []byte(`[
		{"product_id":"A","quantity":2,"variant":{"color":"Black"}},
		{"product_id":"A","quantity":1},
		{"product_id":"","quantity":3},
		{"product_id":"B","quantity":0},
		{"product_id":" C ","quantity":1}
	]`)
	lines, err := decodeLines(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("want 2 lines got %+v", lines)
	}
	if lines[0].ProductID != "A" || lines[0].Quantity != 3 || lines[0].Variant.Color != "Black" {
		t.Fatalf("duplicates should merge keeping first variant: %+v", lines[0])
	}
	if lines[1].ProductID != "C" {
		t.Fatalf("product id should be trimmed, got %q", lines[1].ProductID)
	}
}

func TestEncodeWritesVersionedBlob(t *testing.T) {
	data, err := encodeLines(nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("blob should be json: %v", err)
	}
	if payload["version"].(float64) != blobVersion {
		t.Fatalf("version want %d got %v", blobVersion, payload["version"])
	}
	if items, ok := payload["items"].([]interface{}); !ok || len(items) != 0 {
		t.Fatalf("empty cart should encode an empty items array, got %v", payload["items"])
	}

	lines := []Line{{ProductID: "A", Quantity: 2, Variant: &Variant{Size: "M"}}}
	data, _ = encodeLines(lines)
	decoded, err := decodeLines(data)
	if err != nil || len(decoded) != 1 || decoded[0].Variant.Size != "M" {
		t.Fatalf("blob should restore lines, got %+v err=%v", decoded, err)
	}
}

func TestDecodeRejectsMalformedBlobs(t *testing.T) {
	cases := map[string]string{
		"garbage":        "hello",
		"future version": `{"version":99,"items":[]}`,
		"broken object":  `{"version":1,"items":`,
	}
	for name, raw := range cases {
		if _, err := decodeLines([]byte(raw)); err == nil {
			t.Fatalf("%s should fail to decode", name)
		}
	}
	if lines, err := decodeLines([]byte("   ")); err != nil || lines != nil {
		t.Fatalf("blank blob should decode to nil, got %v %v", lines, err)
	}
}

func TestSummaryJSONRoundsForDisplay(t *testing.T) {
	product := &models.Product{ID: "P", Name: "Pan", Price: models.MustMoney("19.99"), Discount: decimal.NewFromInt(15)}
	line := priceLine(Line{ProductID: "P", Quantity: 3}, product)
	summary := DefaultPricing().summarize([]SummaryLine{line})
	if !summary.Subtotal.Equal(decimal.RequireFromString("50.9745")) {
		t.Fatalf("subtotal should keep full precision, got %s", summary.Subtotal)
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var view struct {
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if view.Subtotal != "50.97" || view.Shipping != "10.00" || view.Tax != "4.08" || view.Total != "65.05" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestDecodeCapsOversizedQuantities(t *testing.T) {
	data := []byte(`{"version":1,"items":[
		{"product_id":"A","quantity":9223372036854775807},
		{"product_id":"A","quantity":1},
		{"product_id":"B","quantity":` + strconv.Itoa(math.MaxInt32) + `},
		{"product_id":"B","quantity":` + strconv.Itoa(math.MaxInt32) + `},
		{"product_id":"C","quantity":5}
	]}`)
	lines, err := decodeLines(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for _, line := range lines {
		if line.Quantity < 1 || line.Quantity > math.MaxInt32 {
			t.Fatalf("line %s quantity out of range after load: %d", line.ProductID, line.Quantity)
		}
	}
	if len(lines) != 3 {
		t.Fatalf("want 3 lines got %+v", lines)
	}
	if lines[0].ProductID != "A" || lines[0].Quantity != 1 {
		t.Fatalf("oversized entry should be dropped, got %+v", lines[0])
	}
	if lines[1].ProductID != "B" || lines[1].Quantity != math.MaxInt32 {
		t.Fatalf("merged quantity should be capped, got %+v", lines[1])
	}
	if lines[2].ProductID != "C" || lines[2].Quantity != 5 {
		t.Fatalf("unexpected line %+v", lines[2])
	}
}
