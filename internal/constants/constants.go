package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付方式常量
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodPaypal     = "paypal"
	PaymentMethodStripe     = "stripe"
)

// 购物车存储后端
const (
	CartStoreMemory   = "memory"
	CartStoreRedis    = "redis"
	CartStoreDatabase = "database"
)

// 队列与任务常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskOrderPlaced       = "order:placed"
	TaskCartSnapshotPurge = "cart:snapshot_purge"
	CartSnapshotPurgeCron = "@daily"
	OrderNoPrefix         = "MR"
	CartSessionClaim      = "cart_session"
)

// 请求头常量
const (
	HeaderCartSession = "X-Cart-Session"
	HeaderAdminKey    = "X-Admin-Key"
)
