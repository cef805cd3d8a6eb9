package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mara-shop/internal/cart"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable Redis 未启用
var ErrRedisUnavailable = errors.New("redis not enabled")

// CartStore 基于 Redis 的购物车持久化，每个会话一个 key，写入时刷新过期时间
type CartStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCartStore 创建 Redis 购物车存储，ttl <= 0 表示不过期
func NewCartStore(client *redis.Client, prefix string, ttl time.Duration) *CartStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CartStore{client: client, prefix: prefix, ttl: ttl}
}

// Session 返回指定会话的持久化句柄
func (s *CartStore) Session(key string) cart.Persistence {
	return &cartSession{store: s, key: joinKey(s.prefix, "cart:"+strings.TrimSpace(key))}
}

// Delete 删除会话购物车
func (s *CartStore) Delete(ctx context.Context, sessionKey string) error {
	if s.client == nil {
		return ErrRedisUnavailable
	}
	return s.client.Del(ctx, joinKey(s.prefix, "cart:"+strings.TrimSpace(sessionKey))).Err()
}

type cartSession struct {
	store *CartStore
	key   string
}

func (c *cartSession) Load(ctx context.Context) ([]byte, error) {
	if c.store.client == nil {
		return nil, ErrRedisUnavailable
	}
	data, err := c.store.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *cartSession) Save(ctx context.Context, blob []byte) error {
	if c.store.client == nil {
		return ErrRedisUnavailable
	}
	return c.store.client.Set(ctx, c.key, blob, c.store.ttl).Err()
}
