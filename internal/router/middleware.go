package router

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"
	handlershared "github.com/mara-shop/internal/http/handlers/shared"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// 购物车会话与后台鉴权头始终允许跨域携带
var requiredCORSHeaders = []string{"Content-Type", constants.HeaderCartSession, constants.HeaderAdminKey}

type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	credentials bool
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	policy := corsPolicy{origins: make(map[string]struct{}), credentials: cfg.AllowCredentials}
	if len(cfg.AllowedOrigins) == 0 {
		policy.anyOrigin = true
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			policy.anyOrigin = true
			continue
		}
		if origin != "" {
			policy.origins[strings.ToLower(origin)] = struct{}{}
		}
	}
	return policy
}

// allowOrigin 返回 Access-Control-Allow-Origin 取值，空串表示不允许
func (p corsPolicy) allowOrigin(origin string) string {
	if p.anyOrigin {
		// 携带凭证时浏览器不接受 *，回显请求来源
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if _, ok := p.origins[strings.ToLower(origin)]; ok && origin != "" {
		return origin
	}
	return ""
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	methodsHeader := strings.Join(methods, ", ")
	headersHeader := strings.Join(mergeHeaderNames(cfg.AllowedHeaders, requiredCORSHeaders), ", ")
	exposeHeader := strings.Join([]string{requestIDHeader, constants.HeaderCartSession, "Retry-After"}, ", ")

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowed := policy.allowOrigin(c.GetHeader("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if policy.credentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", headersHeader)
		header.Set("Access-Control-Allow-Methods", methodsHeader)
		header.Set("Access-Control-Expose-Headers", exposeHeader)
		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// mergeHeaderNames 合并请求头名称，忽略大小写去重并保持顺序
func mergeHeaderNames(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, group := range groups {
		for _, name := range group {
			name = strings.TrimSpace(name)
			key := strings.ToLower(name)
			if name == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}

// RequestIDMiddleware 透传或生成请求 ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 请求日志，5xx 记 error，携带 gin 错误时记 warn
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if sessionID := c.GetString(handlershared.CartSessionContextKey); sessionID != "" {
			fields = append(fields, "cart_session", sessionID)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			sugar.Errorw("request", fields...)
		case len(c.Errors) > 0:
			sugar.Warnw("request", append(fields, "errors", c.Errors.String())...)
		default:
			sugar.Infow("request", fields...)
		}
	}
}

// CartSessionMiddleware 解析 X-Cart-Session 令牌，缺失或无效时签发新会话并通过响应头回写
func CartSessionMiddleware(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			response.Error(c, response.CodeInternal, "cart session unavailable")
			c.Abort()
			return
		}
		raw := strings.TrimSpace(c.GetHeader(constants.HeaderCartSession))
		sessionID, token, err := manager.Resolve(raw)
		if err != nil {
			handlershared.RespondError(c, response.CodeInternal, "cart session unavailable", err)
			c.Abort()
			return
		}
		if token != "" {
			c.Writer.Header().Set(constants.HeaderCartSession, token)
			if raw != "" {
				handlershared.RequestLog(c).Debugw("cart_session_reissued", "session_id", sessionID)
			}
		}
		c.Set(handlershared.CartSessionContextKey, sessionID)
		c.Next()
	}
}

// AdminKeyMiddleware 校验后台静态 API Key，未配置时拒绝所有后台请求
func AdminKeyMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(apiKey))
	return func(c *gin.Context) {
		if len(expected) == 0 {
			response.Forbidden(c, "admin api disabled")
			c.Abort()
			return
		}
		provided := []byte(strings.TrimSpace(c.GetHeader(constants.HeaderAdminKey)))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			response.Unauthorized(c, "admin key invalid")
			c.Abort()
			return
		}
		c.Next()
	}
}
