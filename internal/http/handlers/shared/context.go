package shared

import (
	"strings"

	"github.com/mara-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartSessionContextKey 购物车会话 ID 在 gin 上下文中的键
const CartSessionContextKey = "cart_session_id"

// GetCartSession 从上下文读取购物车会话 ID，缺失时直接返回 401。
func GetCartSession(c *gin.Context) (string, bool) {
	value, exists := c.Get(CartSessionContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "cart session is required", nil)
		return "", false
	}
	sessionID, ok := value.(string)
	if !ok || strings.TrimSpace(sessionID) == "" {
		RespondError(c, response.CodeUnauthorized, "cart session is invalid", nil)
		return "", false
	}
	return sessionID, true
}
