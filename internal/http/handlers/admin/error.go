package admin

import (
	"time"

	handlershared "github.com/mara-shop/internal/http/handlers/shared"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

var productErrorRules = []handlershared.MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "product not found"},
	{Target: service.ErrProductIDInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrProductIDExists, Code: response.CodeConflict},
	{Target: service.ErrProductNameRequired, Code: response.CodeBadRequest},
	{Target: service.ErrProductPriceInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrProductDiscountInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrProductStockInvalid, Code: response.CodeBadRequest},
}

var orderErrorRules = []handlershared.MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "order not found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest},
}

func respondProductError(c *gin.Context, err error, fallbackMsg string) {
	handlershared.RespondMappedError(c, err, productErrorRules, response.CodeInternal, fallbackMsg)
}

func respondOrderError(c *gin.Context, err error, fallbackMsg string) {
	handlershared.RespondMappedError(c, err, orderErrorRules, response.CodeInternal, fallbackMsg)
}

// parseTimeNullable 解析 RFC3339 或 YYYY-MM-DD，空串返回 nil
func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
