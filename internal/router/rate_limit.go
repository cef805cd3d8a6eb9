package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	// Message 超限提示，%d 占位为剩余等待秒数
	Message string
}

const (
	defaultRateLimitMsg     = "too many requests, retry in %d seconds"
	rateLimitUnavailableMsg = "rate limit unavailable"
)

// KEYS[1] 计数 key；ARGV[1] 窗口秒数。返回 {当前计数, 剩余 TTL}
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("TTL", KEYS[1])}
`)

type windowLimiter struct {
	client *redis.Client
	rule   RateLimitRule
}

// hit 记录一次请求，返回是否放行与需等待的秒数
func (l windowLimiter) hit(ctx context.Context, key string) (bool, int, error) {
	values, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.rule.WindowSeconds).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(values) < 2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply %v", values)
	}
	if values[0] <= int64(l.rule.MaxRequests) {
		return true, 0, nil
	}
	wait := int(values[1])
	if wait < 1 {
		wait = max(l.rule.WindowSeconds, 1)
	}
	return false, wait, nil
}

func (l windowLimiter) key(raw string) string {
	if l.rule.Prefix == "" {
		return raw
	}
	return l.rule.Prefix + ":" + raw
}

func (l windowLimiter) message(wait int) string {
	msg := strings.TrimSpace(l.rule.Message)
	if msg == "" {
		msg = defaultRateLimitMsg
	}
	return fmt.Sprintf(msg, wait)
}

// RateLimitMiddleware Redis 固定窗口限流；未配置 Redis 或规则无效时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = KeyByIP
	}
	limiter := windowLimiter{client: client, rule: rule}
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		raw := strings.TrimSpace(keyFunc(c))
		if raw == "" {
			raw = c.ClientIP()
		}
		key := limiter.key(raw)

		allowed, wait, err := limiter.hit(c.Request.Context(), key)
		if err != nil {
			logger.Warnw("rate_limit_script_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, rateLimitUnavailableMsg)
			c.Abort()
			return
		}
		if !allowed {
			logger.Infow("rate_limit_exceeded", "key", key, "retry_after", wait)
			c.Header("Retry-After", strconv.Itoa(wait))
			response.Error(c, response.CodeTooManyRequests, limiter.message(wait))
			c.Abort()
			return
		}
		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 JSON 字段 + IP 作为限流 key，字段缺失时退回 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// peekJSONString 读取请求体中的字符串字段，并还原请求体供后续绑定
func peekJSONString(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
