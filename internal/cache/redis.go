package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mara-shop/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "mara"

// 进程级 Redis 连接；未启用时所有读写退化为空操作
var state = struct {
	sync.RWMutex
	client *redis.Client
	prefix string
}{prefix: defaultPrefix}

// InitRedis 按配置创建 Redis 客户端，未启用时保持关闭
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		Use(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		Use(nil, "")
		return err
	}
	Use(client, cfg.Prefix)
	return nil
}

// Use 绑定已创建的客户端，client 为 nil 时关闭缓存
func Use(client *redis.Client, prefix string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	state.Lock()
	state.client = client
	state.prefix = prefix
	state.Unlock()
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return Client() != nil
}

// Client 获取 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	state.RLock()
	defer state.RUnlock()
	return state.client
}

// Prefix 当前 key 前缀
func Prefix() string {
	state.RLock()
	defer state.RUnlock()
	return state.prefix
}

// Close 关闭并解绑客户端
func Close() error {
	state.Lock()
	client := state.client
	state.client = nil
	state.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client := Client()
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client := Client()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, buildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	client := Client()
	if client == nil {
		return nil
	}
	return client.Del(ctx, buildKey(key)).Err()
}

func buildKey(key string) string {
	return joinKey(Prefix(), key)
}

func joinKey(prefix, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return prefix
	}
	return prefix + ":" + key
}
