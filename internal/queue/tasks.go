package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mara-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPlaced 下单后处理任务
	TaskOrderPlaced = constants.TaskOrderPlaced
	// TaskCartSnapshotPurge 购物车快照清理任务
	TaskCartSnapshotPurge = constants.TaskCartSnapshotPurge
)

// OrderPlacedPayload 下单任务载荷
type OrderPlacedPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
}

// CartSnapshotPurgePayload 快照清理任务载荷
type CartSnapshotPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewOrderPlacedTask 创建下单任务
func NewOrderPlacedTask(payload OrderPlacedPayload) (*asynq.Task, error) {
	if payload.OrderID == 0 {
		return nil, fmt.Errorf("order placed task: order id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPlaced, body), nil
}

// NewCartSnapshotPurgeTask 创建快照清理任务
func NewCartSnapshotPurgeTask(payload CartSnapshotPurgePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartSnapshotPurge, body), nil
}

// ParseOrderPlacedPayload 解析下单任务载荷
func ParseOrderPlacedPayload(body []byte) (OrderPlacedPayload, error) {
	var payload OrderPlacedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	payload.OrderNo = strings.TrimSpace(payload.OrderNo)
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("order placed task: order id is required")
	}
	return payload, nil
}

// ParseCartSnapshotPurgePayload 解析快照清理任务载荷
func ParseCartSnapshotPurgePayload(body []byte) (CartSnapshotPurgePayload, error) {
	var payload CartSnapshotPurgePayload
	if len(body) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(body, &payload)
	return payload, err
}
