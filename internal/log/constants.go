package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyUserID        = "userId"
	KeyCartID        = "cartId"
	KeyOrderID       = "orderId"
	KeyProductID     = "productId"
	KeyAddressID     = "addressId"
	KeyQuantity      = "quantity"
	KeyStock         = "stock"
	KeyTotal         = "total"
	KeyOrderStatus   = "orderStatus"
	KeyCacheKey      = "cacheKey"
	KeyDbURL         = "dbUrl"
	KeyRequestBody   = "requestBody"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyHeader        = "header"
	KeyShortfalls    = "shortfalls"
)
