package public

import (
	handlershared "github.com/mara-shop/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getCartSession(c *gin.Context) (string, bool) {
	return handlershared.GetCartSession(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

