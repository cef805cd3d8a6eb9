package service

import "errors"

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrSessionRequired 缺少购物车会话
	ErrSessionRequired = errors.New("cart session is required")
	// ErrCartUnavailable 购物车读取失败，暂不允许修改
	ErrCartUnavailable = errors.New("cart is temporarily unavailable")

	// ErrProductIDInvalid 商品 ID 非法
	ErrProductIDInvalid = errors.New("product id is invalid")
	// ErrProductIDExists 商品 ID 已存在
	ErrProductIDExists = errors.New("product id already exists")
	// ErrProductNameRequired 商品名称必填
	ErrProductNameRequired = errors.New("product name is required")
	// ErrProductPriceInvalid 商品价格非法
	ErrProductPriceInvalid = errors.New("product price is invalid")
	// ErrProductDiscountInvalid 折扣必须在 0-100 之间
	ErrProductDiscountInvalid = errors.New("product discount must be between 0 and 100")
	// ErrProductStockInvalid 库存不能为负数
	ErrProductStockInvalid = errors.New("product stock must not be negative")

	// ErrCartEmpty 购物车为空
	ErrCartEmpty = errors.New("cart is empty")
	// ErrCartHasStale 购物车包含已下架商品
	ErrCartHasStale = errors.New("cart contains unavailable products")
	// ErrShippingInvalid 收货信息不完整
	ErrShippingInvalid = errors.New("shipping information is incomplete")
	// ErrEmailInvalid 邮箱格式非法
	ErrEmailInvalid = errors.New("email is invalid")
	// ErrPaymentMethodInvalid 支付方式不支持
	ErrPaymentMethodInvalid = errors.New("payment method is not supported")
	// ErrOrderStatusInvalid 订单状态流转非法
	ErrOrderStatusInvalid = errors.New("order status transition is invalid")
)
