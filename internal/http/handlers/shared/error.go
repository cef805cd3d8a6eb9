package shared

import (
	"errors"

	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
// 4xx 业务错误只记 warn，5xx 记 error。
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		log := RequestLog(c).With("code", code, "message", msg, "path", c.FullPath())
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "error", err)
		} else {
			log.Warnw("handler_rejected", "error", err)
		}
	}
	response.Error(c, code, msg)
}

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target  error
	Code    int
	Message string
}

// RespondMappedError 按规则映射业务错误，未命中时使用兜底响应并记录日志。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			msg := rule.Message
			if msg == "" {
				msg = rule.Target.Error()
			}
			RespondError(c, rule.Code, msg, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}

// ConcatMappedErrors 合并多组错误映射规则。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
