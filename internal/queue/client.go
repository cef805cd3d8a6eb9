package queue

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 下单等需尽快处理的任务
	CriticalQueue = constants.QueueCritical

	orderPlacedMaxRetry = 10
	orderPlacedTimeout  = 30 * time.Second
	// 同一订单在保留期内只入队一次
	orderPlacedRetention = 24 * time.Hour
)

// Client asynq 客户端封装，未启用时所有入队操作为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderPlaced 推送下单后处理任务（扣减库存、推进订单状态），按订单号去重
func (c *Client) EnqueueOrderPlaced(payload OrderPlacedPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderPlacedTask(payload)
	if err != nil {
		return err
	}
	defaults := []asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(orderPlacedMaxRetry),
		asynq.Timeout(orderPlacedTimeout),
		asynq.Retention(orderPlacedRetention),
	}
	if payload.OrderNo != "" {
		defaults = append(defaults, asynq.TaskID(TaskOrderPlaced+":"+payload.OrderNo))
	}
	_, err = c.client.Enqueue(task, append(defaults, opts...)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// BuildServerConfig 生成 worker 服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{DefaultQueue: 1, CriticalQueue: 2},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return RedisOpt(cfg), serverCfg
}

// RedisOpt 队列使用的 Redis 连接参数，未配置的字段使用本地默认值
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
