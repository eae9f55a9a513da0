package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartItem mirrors one cart line joined with its product. StockAvailable is
// the stock visible at read time, not a reservation.
type CartItem struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Image          string          `json:"image,omitempty"`
	Price          decimal.Decimal `json:"price"`
	QuantityInCart int32           `json:"quantity_in_cart"`
	StockAvailable int32           `json:"stock_available"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}
