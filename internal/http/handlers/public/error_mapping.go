package public

import (
	"github.com/mara-shop/internal/cart"
	handlershared "github.com/mara-shop/internal/http/handlers/shared"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/service"

	"github.com/gin-gonic/gin"
)

var cartErrorRules = []handlershared.MappedError{
	{Target: service.ErrSessionRequired, Code: response.CodeUnauthorized},
	{Target: service.ErrCartUnavailable, Code: response.CodeUnavailable, Message: "cart is temporarily unavailable, retry later"},
	{Target: cart.ErrInvalidQuantity, Code: response.CodeBadRequest, Message: "quantity must be a positive integer"},
	{Target: cart.ErrProductNotFound, Code: response.CodeNotFound, Message: "product not found"},
	{Target: cart.ErrInsufficientStock, Code: response.CodeConflict, Message: "insufficient stock"},
}

var checkoutErrorRules = []handlershared.MappedError{
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest},
	{Target: service.ErrCartHasStale, Code: response.CodeConflict},
	{Target: service.ErrEmailInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrShippingInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrPaymentMethodInvalid, Code: response.CodeBadRequest},
}

func respondCartError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.ConcatMappedErrors(cartErrorRules, checkoutErrorRules), response.CodeInternal, "checkout failed")
}
