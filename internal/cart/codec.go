package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const blobVersion = 1

type blob struct {
	Version int    `json:"version"`
	Items   []Line `json:"items"`
}

// encodeLines 序列化购物车行
func encodeLines(lines []Line) ([]byte, error) {
	items := lines
	if items == nil {
		items = []Line{}
	}
	return json.Marshal(blob{Version: blobVersion, Items: items})
}

// decodeLines 反序列化购物车数据，兼容旧版纯数组格式。
// 非法行（空 ID、数量小于 1 或超过 math.MaxInt32）会被丢弃，
// 重复商品按数量合并且合并结果封顶 math.MaxInt32，保证载入后仍满足购物车不变量。
func decodeLines(data []byte) ([]Line, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var items []Line
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
	case '{':
		var payload blob
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("decode cart blob: %w", err)
		}
		if payload.Version > blobVersion {
			return nil, fmt.Errorf("unsupported cart blob version %d", payload.Version)
		}
		items = payload.Items
	default:
		return nil, fmt.Errorf("unexpected cart blob prefix %q", trimmed[0])
	}

	return normalizeLines(items), nil
}

func normalizeLines(items []Line) []Line {
	lines := make([]Line, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" || item.Quantity < 1 || item.Quantity > math.MaxInt32 {
			continue
		}
		if pos, ok := index[id]; ok {
			if lines[pos].Quantity > math.MaxInt32-item.Quantity {
				lines[pos].Quantity = math.MaxInt32
			} else {
				lines[pos].Quantity += item.Quantity
			}
			continue
		}
		index[id] = len(lines)
		lines = append(lines, Line{
			ProductID: id,
			Quantity:  item.Quantity,
			Variant:   item.Variant.clone(),
		})
	}
	return lines
}
