package log

const (
	KeyAppName         = "app"
	KeyTag             = "tag"
	KeyProcess         = "process"
	KeyConfig          = "config"
	KeyRequestID       = "requestId"
	KeyRequestBody     = "requestBody"
	KeyRequestHost     = "host"
	KeyRequestIp       = "requesterIP"
	KeyRequestMethod   = "requestMethod"
	KeyRequestURI      = "requestURI"
	KeyRequestURL      = "requestURL"
	KeyUserID          = "userId"
	KeyOrderID         = "orderId"
	KeyOrderStatus     = "orderStatus"
	KeyOrders          = "orders"
	KeyProductID       = "productId"
	KeyCartItems       = "cartItems"
	KeyCartTotal       = "cartTotal"
	KeyCacheKey        = "cacheKey"
	KeyPaymentIntentID = "paymentIntentId"
	KeyScope           = "scope"
)
